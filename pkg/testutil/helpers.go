// Package testutil provides common utility functions for testing.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SampleHeader is the header row of the accident spreadsheet.
const SampleHeader = "DIA DA OCORRÊNCIA,TIPO DE ACIDENTE,NEXO CAUSAL,GÊNERO,TURNO,FUNÇÃO,SECRETARIA,ÔNUS,DIAS AFASTAMENTO,NAT"

// SampleCSV is a small accident spreadsheet exercising every column.
var SampleCSV = strings.Join([]string{
	SampleHeader,
	`05/01/2024,Queda,Típico,Feminino,Matutino,Gari,SEMUSB,"R$ 1.234,56",3,2024000001`,
	`20/01/2024,Corte,Típico,Masculino,Vespertino,Gari,SEMUSB,"R$ 100,00",1,2024000002`,
	`03/02/2024,Queda,Trajeto,Masculino,Noturno,Motorista,SEMED,,0,2024000003`,
	`data inválida,Queda,Típico,Feminino,Integral,Professor,SEMED,valor,x,ABC`,
	``,
	`15/03/2024,Choque,Doença,Masculino,Matutino,Eletricista,SEMOB,"R$ 10.000,44",10,2024000005`,
}, "\n") + "\n"

// WriteFile writes content to name inside a per-test temporary directory and
// returns the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteSampleCSV writes SampleCSV and returns its path.
func WriteSampleCSV(t *testing.T) string {
	t.Helper()
	return WriteFile(t, "acidentes.csv", SampleCSV)
}
