package vision

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Despensa-api/internal/domain/entity"
)

// IDs de los detectores registrados.
const (
	DetectorMock  = "mock"
	DetectorHTTP  = "http"
	DetectorLocal = "local"
)

var hashModulus = big.NewInt(100_000_000)

// Rango de cantidades sugeridas por el detector simulado.
var (
	MinMockQuantity = decimal.NewFromInt(1)
	MaxMockQuantity = decimal.NewFromInt(4)
)

// StableHash SHA-256 del texto interpretado como entero, módulo 10^8.
func StableHash(s string) int64 {
	sum := sha256.Sum256([]byte(s))
	n := new(big.Int).SetBytes(sum[:])
	return n.Mod(n, hashModulus).Int64()
}

// MockDetector detector base sin red: genera detecciones plausibles a partir del catálogo.
// Para una misma imagen, catálogo y día el resultado es siempre el mismo.
type MockDetector struct{}

// NewMockDetector construye el detector base.
func NewMockDetector() *MockDetector { return &MockDetector{} }

func (d *MockDetector) ID() string                  { return DetectorMock }
func (d *MockDetector) Name() string                { return "Simulado (sin conexión)" }
func (d *MockDetector) IsAvailable() (bool, string) { return true, "" }

// Detect toma min(topK, max(6, min(10, |catálogo|))) ítems al azar con un generador
// sembrado por StableHash(imageID).
func (d *MockDetector) Detect(_ context.Context, in DetectInput) ([]entity.Detection, error) {
	items := in.Catalog.Items()
	if len(items) == 0 {
		return []entity.Detection{}, nil
	}
	seed := StableHash(in.ImageID)
	rng := rand.New(rand.NewSource(seed))

	size := min(in.TopK, max(6, min(10, len(items))), len(items))
	if size <= 0 {
		return []entity.Detection{}, nil
	}
	perm := rng.Perm(len(items))[:size]

	out := make([]entity.Detection, 0, size)
	for _, idx := range perm {
		item := items[idx]
		confidence := round(0.6+rng.Float64()*0.35, 2)
		quantity := decimal.NewFromFloat(1 + rng.Float64()*3).Round(1)
		quantity = decimal.Min(MaxMockQuantity, decimal.Max(MinMockQuantity, quantity))
		expire := ShelfLifeExpiry(item, in.Today)
		id := item.ID
		out = append(out, entity.Detection{
			TempID:            fmt.Sprintf("det_%d_%d", item.ID, seed),
			ItemID:            &id,
			ItemName:          item.Name,
			Confidence:        confidence,
			Quantity:          quantity,
			Unit:              item.UnitOrDefault(),
			SuggestExpireDate: &expire,
			Location:          entity.DefaultLocation,
		})
	}
	return out, nil
}
