// devtoken emite un JWT firmado con JWT_SECRET para probar la API en local.
// En producción los tokens los emite el proveedor de identidad.
//
// Uso: go run ./cmd/devtoken -tenant <id> -user <id> -role planner
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger/pkg/config"
	"github.com/jhoicas/stockledger/pkg/jwt"
)

func main() {
	tenant := flag.String("tenant", "", "tenant_id (requerido)")
	user := flag.String("user", uuid.NewString(), "user_id")
	role := flag.String("role", "admin", "admin | planner | operator | viewer")
	flag.Parse()

	if *tenant == "" {
		flag.Usage()
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, cfg.JWT.Issuer, jwt.Identity{UserID: *user, TenantID: *tenant, Role: *role}, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
