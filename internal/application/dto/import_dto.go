package dto

// ImportRowError fila rechazada en la importación.
type ImportRowError struct {
	Line    int    `json:"line"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ImportResponse resumen de POST /api/import/products.
type ImportResponse struct {
	TotalRows        int              `json:"total_rows"`
	CreatedProducts  int              `json:"created_products"`
	CreatedLocations int              `json:"created_locations"`
	OpeningMovements int              `json:"opening_movements"`
	Errors           []ImportRowError `json:"errors"`
	UnmappedHeaders  []string         `json:"unmapped_headers,omitempty"`
}
