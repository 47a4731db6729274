package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"asset-exchange/internals/convert"
	"asset-exchange/internals/core/domain"
	"asset-exchange/internals/registry"
	"asset-exchange/internals/service"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	conversionService service.ConversionService
	registry          *registry.Registry
}

func NewHandler(cs service.ConversionService, reg *registry.Registry) *Handler {
	return &Handler{conversionService: cs, registry: reg}
}

type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	log.Printf("Error handling request: %v", err)

	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error: struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}{
			Code:    http.StatusText(code),
			Message: message,
		},
	})
}

// Convert handles GET /v1/convert?from=&to=&amount=&date=&strategy=.
// Unknown symbols, unreachable pairs and missing rates are ordinary
// outcomes of the graph strategy and map to 422, never 500.
func (h *Handler) Convert(c *fiber.Ctx) error {
	fromSymbol := domain.SymbolID(strings.ToUpper(c.Query("from")))
	toSymbol := domain.SymbolID(strings.ToUpper(c.Query("to")))
	amountStr := c.Query("amount")

	if fromSymbol == "" || toSymbol == "" || amountStr == "" {
		return fiber.NewError(fiber.StatusBadRequest, "from, to, and amount query parameters are required")
	}

	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil || amount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be a positive number")
	}

	req := domain.ConversionRequest{
		FromSymbolID: fromSymbol,
		ToSymbolID:   toSymbol,
		Amount:       amount,
		Date:         c.Query("date"),
	}

	var result *domain.ConversionResult
	switch strategy := c.Query("strategy", "graph"); strategy {
	case "graph":
		result, err = h.conversionService.ConvertAmount(c.Context(), req)
	case "direct":
		result, err = h.conversionService.ConvertAmountDirect(c.Context(), req)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "strategy must be `graph` or `direct`")
	}
	if err != nil {
		return mapConversionError(err)
	}

	return c.JSON(result)
}

func mapConversionError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidDateFormat):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, convert.ErrUnknownSymbol),
		errors.Is(err, convert.ErrUnreachable),
		errors.Is(err, convert.ErrRateUnavailable):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return err
}

// ListRelationships handles GET /v1/relationships.
func (h *Handler) ListRelationships(c *fiber.Ctx) error {
	return c.JSON(h.registry.List())
}

type addRelationshipRequest struct {
	FromSymbolID string `json:"from"`
	ToSymbolID   string `json:"to"`
}

// AddRelationship handles POST /v1/relationships. The next conversion after
// a successful add sees a freshly built graph.
func (h *Handler) AddRelationship(c *fiber.Ctx) error {
	var body addRelationshipRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	from := domain.SymbolID(strings.ToUpper(strings.TrimSpace(body.FromSymbolID)))
	to := domain.SymbolID(strings.ToUpper(strings.TrimSpace(body.ToSymbolID)))

	rel, err := h.registry.Add(from, to)
	if err != nil {
		if errors.Is(err, registry.ErrDuplicateRelationship) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(rel)
}

// Rebuild handles POST /v1/rebuild, forcing fresh converter instances.
func (h *Handler) Rebuild(c *fiber.Ctx) error {
	if err := h.conversionService.Rebuild(c.Context()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "rebuilt"})
}
