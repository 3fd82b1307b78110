package report

import (
	"strings"
	"testing"
)

func TestDefaultRowLayoutMatch(t *testing.T) {
	layout := DefaultRowLayout()

	tests := []struct {
		name string
		line string
		want Row
	}{
		{
			name: "candidate_row",
			line: "DANIEL NOBOA AZIN 100 55.55% 60 33.33% 40 22.22%",
			want: Row{Entidad: "DANIEL NOBOA AZIN", Total: 100, Hombres: 60, Mujeres: 40},
		},
		{
			name: "accented_name",
			line: "LUISA GONZÁLEZ 200 45,12% 90 20,10% 110 25,02%",
			want: Row{Entidad: "LUISA GONZÁLEZ", Total: 200, Hombres: 90, Mujeres: 110},
		},
		{
			name: "percent_sign_optional",
			line: "BLANCOS 5 0.55 3 0.33 2 0.22",
			want: Row{Entidad: "BLANCOS", Total: 5, Hombres: 3, Mujeres: 2},
		},
		{
			name: "name_with_slash_and_number",
			line: "LISTA 25/B 40 4.00% 25 2.50% 15 1.50%",
			want: Row{Entidad: "LISTA 25/B", Total: 40, Hombres: 25, Mujeres: 15},
		},
		{
			name: "aggregate_with_plus",
			line: "TOTAL ELECTORES + PPL 13000 100% 6500 50% 6500 50%",
			want: Row{Entidad: "TOTAL ELECTORES + PPL", Total: 13000, Hombres: 6500, Mujeres: 6500},
		},
		{
			name: "internal_whitespace_normalized",
			line: "VOTOS   VALIDOS 100 92.59% 60 55.55% 40 37.03%",
			want: Row{Entidad: "VOTOS VALIDOS", Total: 100, Hombres: 60, Mujeres: 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := layout.Match(tt.line)
			if !ok {
				t.Fatalf("Match(%q) did not match", tt.line)
			}
			if got != tt.want {
				t.Errorf("Match(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestDefaultRowLayoutRejects(t *testing.T) {
	layout := DefaultRowLayout()

	lines := []string{
		"",
		"RESULTADOS NACIONALES",
		"CONSEJO NACIONAL ELECTORAL",
		"12",
		"ENTIDAD TOTAL % HOMBRES % MUJERES %",
		"DANIEL NOBOA AZIN 100 55.55% 60 33.33%", // only two count columns
		"Página 3 de 12",
	}

	for _, line := range lines {
		if row, ok := layout.Match(line); ok {
			t.Errorf("Match(%q) matched unexpectedly: %+v", line, row)
		}
	}
}

func TestRowLayoutCompile(t *testing.T) {
	t.Run("missing_capture_group", func(t *testing.T) {
		layout := &RowLayout{
			Name:    "broken",
			Pattern: `^(?P<entidad>.+?)\s+(?P<total>\d+)$`,
		}
		err := layout.Compile()
		if err == nil {
			t.Fatal("expected error for pattern missing capture groups")
		}
		if !strings.Contains(err.Error(), "hombres") {
			t.Errorf("error should name the missing group, got: %v", err)
		}
	})

	t.Run("invalid_regex", func(t *testing.T) {
		layout := &RowLayout{Name: "bad", Pattern: `(`}
		if err := layout.Compile(); err == nil {
			t.Fatal("expected error for invalid regex")
		}
	})

	t.Run("empty_pattern", func(t *testing.T) {
		layout := &RowLayout{Name: "empty"}
		if err := layout.Compile(); err == nil {
			t.Fatal("expected error for empty pattern")
		}
	})

	t.Run("compiled_flag", func(t *testing.T) {
		layout := &RowLayout{Name: "ok", Pattern: defaultRowPattern}
		if layout.IsCompiled() {
			t.Error("layout should not be compiled before Compile")
		}
		if err := layout.Compile(); err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if !layout.IsCompiled() {
			t.Error("layout should be compiled after Compile")
		}
	})
}
