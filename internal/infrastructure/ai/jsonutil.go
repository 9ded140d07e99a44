package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// extractJSON extrae el objeto JSON de un texto libre aunque el modelo lo envuelva en markdown
// o agregue comentarios: quita los bloques ``` y toma desde el primer '{' hasta el último '}'.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		// Quitar la línea de apertura (```json o ```)
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// explainLines acepta una lista de textos o un valor suelto y lo devuelve como lista.
func explainLines(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			out = append(out, toString(v))
		}
		return out
	}
	var single any
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil
	}
	if s := toString(single); s != "" {
		return []string{s}
	}
	return nil
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// truncate acorta textos de respuesta para mensajes de error.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
