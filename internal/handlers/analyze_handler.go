package handlers

import (
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindUnsupportedFormat: fiber.StatusUnsupportedMediaType,
	services.KindCorruptDocument:   fiber.StatusUnprocessableEntity,
	services.KindEmptyContent:      fiber.StatusUnprocessableEntity,
	services.KindPayloadTooLarge:   fiber.StatusRequestEntityTooLarge,
	services.KindTimeout:           fiber.StatusGatewayTimeout,
	services.KindBusy:              fiber.StatusServiceUnavailable,
	services.KindInternalFailure:   fiber.StatusInternalServerError,
}

// StatusForError maps an analysis failure to an HTTP status code.
func StatusForError(err error) int {
	if status, ok := kindStatus[services.KindOf(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

type AnalyzeHandler struct {
	analyzer    services.Analyzer
	maxFileSize int64
}

func NewAnalyzeHandler(analyzer services.Analyzer, maxFileSize int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:    analyzer,
		maxFileSize: maxFileSize,
	}
}

// HandleAnalyze accepts a multipart form with a resume "file" and a target
// "category" and returns the analysis result.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "BadRequest",
			Message: "Please upload a resume in the 'file' field.",
		})
	}

	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return h.writeError(c, services.KindPayloadTooLarge)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.writeError(c, services.KindInternalFailure)
	}
	defer file.Close()

	reader := io.Reader(file)
	if h.maxFileSize > 0 {
		reader = io.LimitReader(file, h.maxFileSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return h.writeError(c, services.KindInternalFailure)
	}

	req := services.AnalysisRequest{
		Document: services.ResumeDocument{
			Data:      data,
			MediaType: services.ResolveMediaType(fileHeader.Header.Get(fiber.HeaderContentType), fileHeader.Filename),
			Size:      max(fileHeader.Size, int64(len(data))),
		},
		Category: strings.TrimSpace(c.FormValue("category")),
	}

	result, err := h.analyzer.Analyze(c.UserContext(), req)
	if err != nil {
		return c.Status(StatusForError(err)).JSON(models.ErrorResponse{
			Error:   string(services.KindOf(err)),
			Message: services.SafeMessage(err),
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *AnalyzeHandler) writeError(c *fiber.Ctx, kind services.ErrorKind) error {
	err := &services.AnalysisError{Kind: kind, Err: fmt.Errorf("rejected by handler")}
	return c.Status(StatusForError(err)).JSON(models.ErrorResponse{
		Error:   string(kind),
		Message: services.SafeMessage(err),
	})
}

// HandleHealth reports that the service is up.
func HandleHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("OK")
}
