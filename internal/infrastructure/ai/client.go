// Package ai contiene los adaptadores hacia planificadores y detectores externos:
// servicios HTTP genéricos y modelos locales compatibles con Ollama.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/Despensa-api/internal/application/backend"
)

// maxResponseBytes límite de lectura de respuestas externas.
const maxResponseBytes = 1 << 20

// jsonPoster envía un JSON por POST a un backend externo y clasifica los errores
// según el protocolo de backends.
type jsonPoster struct {
	backendID   string
	endpoint    string
	headersJSON string
	headersKey  string // nombre de la variable de entorno, para los mensajes
	timeout     time.Duration
	client      *http.Client
}

func newJSONPoster(backendID, endpoint, headersJSON, headersKey string, timeout time.Duration) jsonPoster {
	return jsonPoster{
		backendID:   backendID,
		endpoint:    endpoint,
		headersJSON: headersJSON,
		headersKey:  headersKey,
		timeout:     timeout,
		client:      &http.Client{Timeout: timeout},
	}
}

// headers interpreta el JSON de cabeceras configurado. Content-Type siempre es JSON.
func (p jsonPoster) headers() (map[string]string, error) {
	h := map[string]string{}
	if strings.TrimSpace(p.headersJSON) != "" {
		if err := json.Unmarshal([]byte(p.headersJSON), &h); err != nil {
			return nil, backend.WrapError(backend.ErrConfigKind, p.backendID,
				fmt.Errorf("%s inválido: %w", p.headersKey, err))
		}
	}
	h["Content-Type"] = "application/json"
	return h, nil
}

// post serializa payload, lo envía y devuelve el cuerpo de una respuesta 2xx/3xx.
// Un status >= 400 es BACKEND_RESPONSE_ERROR.
func (p jsonPoster) post(ctx context.Context, payload any) ([]byte, error) {
	headers, err := p.headers()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("AI: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, backend.NewError(backend.ErrResponseErrorKind, p.backendID,
			fmt.Sprintf("%d %s", resp.StatusCode, truncate(strings.TrimSpace(string(raw)), 200)))
	}
	return raw, nil
}

// invalid construye un error BACKEND_RESPONSE_INVALID.
func invalid(backendID, format string, args ...any) error {
	return backend.NewError(backend.ErrResponseInvalidKind, backendID, fmt.Sprintf(format, args...))
}
