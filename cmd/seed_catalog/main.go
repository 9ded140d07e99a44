// seed_catalog genera el script SQL que carga el catálogo de alimentos y recetas
// a partir del JSON de catálogo (el mismo que usa STORE_DRIVER=memory).
//
// Uso: go run ./cmd/seed_catalog [ruta/catalog.json]
// Por defecto lee data/catalog.json.
// Escribe: internal/infrastructure/postgres/migrations/000002_seed_catalog.up.sql
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jhoicas/Despensa-api/pkg/catalog"
)

func main() {
	moduleRoot := findModuleRoot()
	jsonPath := filepath.Join(moduleRoot, "data", "catalog.json")
	if len(os.Args) > 1 {
		jsonPath = os.Args[1]
	}
	f, err := os.Open(jsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir catálogo: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cat, err := catalog.Decode(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar catálogo: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "000002_seed_catalog.up.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := render(out, cat); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d ítems, %d recetas\n", outPath, len(cat.Items), len(cat.Recipes))
}

// render escribe el script: ítems, recetas, ingredientes y ajuste de secuencias.
// Los INSERT usan ON CONFLICT para poder reaplicarse.
func render(w io.Writer, cat *catalog.File) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de alimentos y recetas\n")
	b.WriteString("-- Generado por cmd/seed_catalog\n\n")

	if len(cat.Items) > 0 {
		b.WriteString("-- 1. Ítems\n")
		b.WriteString("INSERT INTO items (id, name, category, default_unit, shelf_life_days) VALUES\n")
		for i, it := range cat.Items {
			unit := it.DefaultUnit
			if unit == "" {
				unit = "unit"
			}
			shelf := "NULL"
			if it.ShelfLifeDays != nil {
				shelf = strconv.Itoa(*it.ShelfLifeDays)
			}
			fmt.Fprintf(&b, "  (%d, '%s', '%s', '%s', %s)%s\n",
				it.ID, escapeSQL(it.Name), escapeSQL(it.Category), escapeSQL(unit), shelf, sep(i, len(cat.Items)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category,\n")
		b.WriteString("  default_unit = EXCLUDED.default_unit, shelf_life_days = EXCLUDED.shelf_life_days;\n\n")
	}

	if len(cat.Recipes) > 0 {
		b.WriteString("-- 2. Recetas\n")
		b.WriteString("INSERT INTO recipes (id, name, tags, allergens, steps, nutrition) VALUES\n")
		for i, rc := range cat.Recipes {
			nutrition := "NULL"
			if len(rc.Nutrition) > 0 && string(rc.Nutrition) != "null" {
				nutrition = "'" + escapeSQL(string(rc.Nutrition)) + "'"
			}
			fmt.Fprintf(&b, "  (%d, '%s', '%s', '%s', '%s', %s)%s\n",
				rc.ID, escapeSQL(rc.Name), escapeSQL(rc.Tags), escapeSQL(rc.Allergens), escapeSQL(rc.Steps),
				nutrition, sep(i, len(cat.Recipes)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, tags = EXCLUDED.tags,\n")
		b.WriteString("  allergens = EXCLUDED.allergens, steps = EXCLUDED.steps, nutrition = EXCLUDED.nutrition;\n\n")

		b.WriteString("-- 3. Ingredientes\n")
		for _, rc := range cat.Recipes {
			for _, in := range rc.Ingredients {
				fmt.Fprintf(&b, "INSERT INTO recipe_ingredients (recipe_id, item_id, quantity, unit, optional) VALUES (%d, %d, %s, '%s', %t)\n",
					rc.ID, in.ItemID, in.Quantity.String(), escapeSQL(in.Unit), in.Optional)
				b.WriteString("ON CONFLICT (recipe_id, item_id) DO UPDATE SET quantity = EXCLUDED.quantity, unit = EXCLUDED.unit, optional = EXCLUDED.optional;\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("-- 4. Secuencias\n")
	b.WriteString("SELECT setval('items_id_seq', GREATEST((SELECT COALESCE(MAX(id), 0) FROM items), 1));\n")
	b.WriteString("SELECT setval('recipes_id_seq', GREATEST((SELECT COALESCE(MAX(id), 0) FROM recipes), 1));\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
