// Package spreadsheet lee hojas de cálculo (xlsx) y CSV como filas de texto.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/stockledger/internal/application/importer"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var _ importer.RowReader = (*Reader)(nil)

// utf8BOM marca que Excel antepone al exportar CSV en UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader elige el formato por la extensión del archivo.
type Reader struct{}

// NewReader construye el lector.
func NewReader() *Reader { return &Reader{} }

// ReadRows devuelve las filas de la primera hoja (xlsx) o del CSV.
func (r *Reader) ReadRows(filename string, src io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readXLSX(src)
	case ".csv", ".txt":
		return readCSV(src)
	default:
		return nil, fmt.Errorf("formato no soportado %q: %w", filepath.Ext(filename), domain.ErrInvalidInput)
	}
}

func readXLSX(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("abrir xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx sin hojas: %w", domain.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("leer hoja %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readCSV acepta UTF-8 (con o sin BOM) y, si el contenido no es UTF-8 válido,
// lo decodifica como Windows-1252, que es lo que exporta Excel en Windows.
func readCSV(src io.Reader) ([][]string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("decodificar csv: %w", domain.ErrInvalidInput)
		}
		data = decoded
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", domain.ErrInvalidInput)
	}
	return rows, nil
}

// detectDelimiter elige entre ',', ';' y tab según la primera línea.
func detectDelimiter(sample []byte) rune {
	line, _, _ := bytes.Cut(sample, []byte("\n"))
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
