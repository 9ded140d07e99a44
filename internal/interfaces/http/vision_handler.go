package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Despensa-api/internal/application/dto"
	"github.com/jhoicas/Despensa-api/internal/application/vision"
)

// VisionHandler maneja la subida de fotos y la detección de alimentos.
type VisionHandler struct {
	uc              *vision.VisionUseCase
	defaultProvider string
}

// NewVisionHandler construye el handler. defaultProvider se usa cuando el pedido no indica detector.
func NewVisionHandler(uc *vision.VisionUseCase, defaultProvider string) *VisionHandler {
	return &VisionHandler{uc: uc, defaultProvider: defaultProvider}
}

// Upload godoc
// @Summary      Subir foto de la nevera
// @Tags         vision
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Imagen jpg, png o webp (máx. 10 MB)"
// @Success      201   {object}  vision.UploadResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/vision/images [post]
func (h *VisionHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "falta el archivo 'file'"})
	}
	if fh.Size > vision.MaxImageBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "TOO_LARGE", Message: "la imagen supera 10 MB"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err, "")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, vision.MaxImageBytes+1))
	if err != nil {
		return writeError(c, err, "")
	}
	res, err := h.uc.Upload(c.Context(), fh.Filename, data)
	if err != nil {
		return writeError(c, err, "subida de imágenes deshabilitada")
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Detect godoc
// @Summary      Detectar alimentos en una foto
// @Description  Usa el detector pedido; ante cualquier fallo responde con "mock" y meta.degraded=true.
// @Tags         vision
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DetectRequest  true  "image_id, provider (mock, http, local), top_k"
// @Success      200   {object}  dto.DetectResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      502   {object}  dto.ErrorResponse
// @Router       /api/vision/detect [post]
func (h *VisionHandler) Detect(c *fiber.Ctx) error {
	var in dto.DetectRequest
	if err := parseBody(c, &in); err != nil {
		return bodyError(c, err)
	}
	provider := in.Provider
	if provider == "" {
		provider = h.defaultProvider
	}
	res, err := h.uc.Detect(c.Context(), in.ImageID, provider, in.TopK)
	if err != nil {
		return writeError(c, err, "imagen no encontrada")
	}
	return c.JSON(dto.DetectResponse{
		ImageID:    res.ImageID,
		Detections: dto.DetectionsFromEntities(res.Detections),
		Meta:       res.Meta,
	})
}

// Providers godoc
// @Summary      Detectores disponibles
// @Tags         vision
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/vision/providers [get]
func (h *VisionHandler) Providers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"default": h.defaultProvider, "providers": h.uc.ListProviders()})
}
