package census

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/censo/censo/internal/platform/auth"
)

// maxExtractBytes caps the uploaded extract size. The hospital's daily file
// is well under a megabyte; anything larger is a wrong upload.
const maxExtractBytes = 16 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/census", auth.RequireRole("admin", "nir"))
	g.POST("/preview", h.Preview)
	g.POST("/execute", h.Execute)
}

// previewResponse wraps the diff with the operator-facing execution gate and
// a copyable text listing unresolved catalog entries.
type previewResponse struct {
	*DiffResult
	CanExecute bool   `json:"can_execute"`
	ErrorText  string `json:"error_text,omitempty"`
}

func (h *Handler) Preview(c echo.Context) error {
	data, err := readExtractFile(c)
	if err != nil {
		return err
	}

	diff, err := h.svc.Preview(c.Request().Context(), data)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, previewResponse{
		DiffResult: diff,
		CanExecute: !diff.HasErrors(),
		ErrorText:  renderErrorText(diff.Errors),
	})
}

// executeForm is the multipart companion to the extract file: the operator's
// dispositions for missing patients, keyed by patient ID.
type executeForm struct {
	Dispositions map[string]string `json:"dispositions"`
}

func (h *Handler) Execute(c echo.Context) error {
	data, err := readExtractFile(c)
	if err != nil {
		return err
	}

	decisions, err := parseDispositions(c.FormValue("dispositions"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor := auth.UserNameFromContext(c.Request().Context())
	result, runErr := h.svc.Run(c.Request().Context(), data, decisions, actor, nil)
	if runErr != nil {
		switch {
		case errors.Is(runErr, ErrUnresolvedCatalog):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, runErr.Error())
		case errors.Is(runErr, ErrRunInProgress):
			return echo.NewHTTPError(http.StatusConflict, runErr.Error())
		case result != nil:
			// Partial execution: committed batches stay applied. Report
			// what landed alongside the failure.
			return c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"error":   runErr.Error(),
				"partial": result,
			})
		default:
			return echo.NewHTTPError(http.StatusBadRequest, runErr.Error())
		}
	}

	return c.JSON(http.StatusOK, result)
}

func readExtractFile(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "multipart field 'file' is required")
	}
	if fh.Size > maxExtractBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "extract file too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxExtractBytes+1))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return data, nil
}

func parseDispositions(raw string) (map[uuid.UUID]Disposition, error) {
	decisions := make(map[uuid.UUID]Disposition)
	if raw == "" {
		return decisions, nil
	}

	var form executeForm
	if err := json.Unmarshal([]byte(raw), &form.Dispositions); err != nil {
		return nil, fmt.Errorf("invalid dispositions payload: %w", err)
	}
	for idStr, d := range form.Dispositions {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid patient id %q in dispositions", idStr)
		}
		decisions[id] = Disposition(d)
	}
	return decisions, nil
}

// renderErrorText formats unresolved catalog entries as plain text so the
// operator can paste the list to whoever maintains the registry.
func renderErrorText(errs DiffErrors) string {
	if errs.Empty() {
		return ""
	}
	var b strings.Builder
	if len(errs.Sectors) > 0 {
		b.WriteString("Sectors not found:\n")
		for _, s := range errs.Sectors {
			fmt.Fprintf(&b, "  %s\n", s)
		}
	}
	if len(errs.Beds) > 0 {
		b.WriteString("Beds not found:\n")
		for _, code := range errs.Beds {
			fmt.Fprintf(&b, "  %s\n", code)
		}
	}
	if len(errs.Conflicts) > 0 {
		b.WriteString("Beds listed for more than one patient:\n")
		for _, code := range errs.Conflicts {
			fmt.Fprintf(&b, "  %s\n", code)
		}
	}
	return b.String()
}
