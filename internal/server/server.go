package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/kiesman99/tilemark/internal/api"
	"github.com/kiesman99/tilemark/internal/marker"
	"github.com/kiesman99/tilemark/internal/telegram"
	"github.com/kiesman99/tilemark/pkg/tile"
)

// DefaultMaxBodyBytes bounds request bodies when Config leaves it zero
const DefaultMaxBodyBytes = 20 << 20

// Marker watermarks images. *marker.Marker implements it.
type Marker interface {
	Mark(ctx context.Context, opts *marker.Options) (*marker.Result, error)
}

// UpdateHandler processes Telegram updates. *telegram.Bot implements it.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u *telegram.Update) error
}

// Config configures a Server
type Config struct {
	Version      string
	Style        tile.Style // defaults for requests that override nothing
	MaxBodyBytes int64
	// RateLimit is renders per second across all clients. Zero disables limiting.
	RateLimit     float64
	Burst         int
	WebhookSecret string
	Logger        logrus.FieldLogger
}

// Server implements the ServerInterface from the generated API
type Server struct {
	startTime time.Time
	cfg       Config
	marker    Marker
	bot       UpdateHandler
	limiter   *rate.Limiter
	log       logrus.FieldLogger
}

// NewServer creates a new server instance. bot may be nil, which disables
// the Telegram webhook.
func NewServer(cfg Config, m Marker, bot UpdateHandler) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Server{
		startTime: time.Now(),
		cfg:       cfg,
		marker:    m,
		bot:       bot,
		limiter:   limiter,
		log:       cfg.Logger,
	}
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.cfg.Version,
	}

	s.writeJSON(w, http.StatusOK, response)
}

// CreateWatermark watermarks the image in the request body
func (s *Server) CreateWatermark(w http.ResponseWriter, r *http.Request, params api.CreateWatermarkParams) {
	requestID := newRequestID(w)
	log := s.log.WithField("request_id", requestID)

	if !s.allow() {
		s.writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED",
			"Too many watermark requests, try again later", &requestID, nil)
		return
	}

	style, err := applyOverrides(s.cfg.Style, api.StyleOverrides{
		Opacity:  params.Opacity,
		Angle:    params.Angle,
		Spacing:  params.Spacing,
		FontSize: params.FontSize,
		Color:    params.Color,
	})
	if err != nil {
		s.handleMarkError(w, err, &requestID)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				fmt.Sprintf("Image exceeds %d bytes", maxErr.Limit), &requestID, nil)
			return
		}
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_REQUEST",
			"Could not read request body", &requestID, nil)
		return
	}
	if len(data) == 0 {
		s.writeValidationErrorResponse(w, "body", "request body must contain an image", &requestID)
		return
	}

	result, err := s.marker.Mark(r.Context(), &marker.Options{
		Data:  data,
		Text:  params.Text,
		Style: style,
	})
	if err != nil {
		s.handleMarkError(w, err, &requestID)
		return
	}

	log.WithFields(logrus.Fields{
		"width":  result.Width,
		"height": result.Height,
	}).Debug("watermarked upload")
	s.writeImage(w, result)
}

// CreateWatermarkFromURL fetches the source image and watermarks it
func (s *Server) CreateWatermarkFromURL(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID(w)
	log := s.log.WithField("request_id", requestID)

	var req api.WatermarkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON",
			"Invalid JSON in request body", &requestID, nil)
		return
	}

	if field, msg := validateWatermarkRequest(&req); field != "" {
		s.writeValidationErrorResponse(w, field, msg, &requestID)
		return
	}

	if !s.allow() {
		s.writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED",
			"Too many watermark requests, try again later", &requestID, nil)
		return
	}

	var overrides api.StyleOverrides
	if req.Style != nil {
		overrides = *req.Style
	}
	style, err := applyOverrides(s.cfg.Style, overrides)
	if err != nil {
		s.handleMarkError(w, err, &requestID)
		return
	}

	opts := &marker.Options{
		SourceURL: req.Source.Url,
		Text:      req.Text,
		Style:     style,
	}
	if req.Source.Headers != nil {
		opts.Headers = *req.Source.Headers
	}

	result, err := s.marker.Mark(r.Context(), opts)
	if err != nil {
		s.handleMarkError(w, err, &requestID)
		return
	}

	log.WithFields(logrus.Fields{
		"source": req.Source.Url,
		"width":  result.Width,
		"height": result.Height,
	}).Debug("watermarked fetched image")
	s.writeImage(w, result)
}

// HandleTelegramWebhook passes a Telegram update to the bot
func (s *Server) HandleTelegramWebhook(w http.ResponseWriter, r *http.Request, params api.HandleTelegramWebhookParams) {
	requestID := newRequestID(w)

	if s.bot == nil {
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "TELEGRAM_DISABLED",
			"Telegram bot is not configured", &requestID, nil)
		return
	}

	var header string
	if params.XTelegramBotApiSecretToken != nil {
		header = *params.XTelegramBotApiSecretToken
	}
	if !telegram.VerifySecret(s.cfg.WebhookSecret, header) {
		s.writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED",
			"Invalid webhook secret token", &requestID, nil)
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)).Decode(&update); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON",
			"Invalid update JSON", &requestID, nil)
		return
	}

	// Failures are already reported to the chat; answering with an error
	// would only make Telegram redeliver the update.
	if err := s.bot.HandleUpdate(r.Context(), &update); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"update_id":  update.UpdateID,
		}).WithError(err).Warn("telegram update failed")
	}

	s.writeJSON(w, http.StatusOK, api.TelegramWebhookResponse{Status: api.Ok})
}

// ErrorHandler reports parameter binding failures from the generated wrapper
func (s *Server) ErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	requestID := newRequestID(w)

	field := "request"
	var required *api.RequiredParamError
	var invalid *api.InvalidParamFormatError
	var tooMany *api.TooManyValuesForParamError
	switch {
	case errors.As(err, &required):
		field = required.ParamName
	case errors.As(err, &invalid):
		field = invalid.ParamName
	case errors.As(err, &tooMany):
		field = tooMany.ParamName
	}

	s.writeValidationErrorResponse(w, field, err.Error(), &requestID)
}

func (s *Server) allow() bool {
	return s.limiter == nil || s.limiter.Allow()
}

// validateWatermarkRequest returns the offending field and a message
func validateWatermarkRequest(req *api.WatermarkRequest) (string, string) {
	if req.Source.Url == "" {
		return "source.url", "source.url is required"
	}
	u, err := url.Parse(req.Source.Url)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "source.url", "source.url must be an absolute http or https URL"
	}
	return "", ""
}

// applyOverrides returns base with every set override applied
func applyOverrides(base tile.Style, o api.StyleOverrides) (tile.Style, error) {
	style := base
	if o.Opacity != nil {
		style.Opacity = *o.Opacity
	}
	if o.Angle != nil {
		style.Angle = *o.Angle
	}
	if o.Spacing != nil {
		style.Spacing = *o.Spacing
	}
	if o.FontSize != nil {
		style.Size = *o.FontSize
	}
	if o.RowHeight != nil {
		style.RowHeight = *o.RowHeight
	}
	if o.Color != nil {
		c, err := tile.ParseColor(*o.Color)
		if err != nil {
			return style, err
		}
		style.Color = c
	}
	return style, style.Validate()
}

// handleMarkError maps watermarking errors to API responses
func (s *Server) handleMarkError(w http.ResponseWriter, err error, requestID *string) {
	var paramErr *tile.InvalidParameterError
	if errors.As(err, &paramErr) {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_PARAMETER",
			paramErr.Error(), requestID, map[string]interface{}{
				"field": paramErr.Field,
			})
		return
	}

	if errors.Is(err, tile.ErrDecode) {
		s.writeErrorResponse(w, http.StatusUnprocessableEntity, "DECODE_ERROR",
			"Could not decode image", requestID, nil)
		return
	}

	if errors.Is(err, tile.ErrImageTooLarge) {
		s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
			err.Error(), requestID, nil)
		return
	}

	if errors.Is(err, marker.ErrSourceTooLarge) {
		s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
			"Source image is too large", requestID, nil)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		s.writeErrorResponse(w, http.StatusGatewayTimeout, "SOURCE_TIMEOUT",
			"Source image request timed out", requestID, nil)
		return
	}

	var fetchErr *marker.FetchError
	if errors.As(err, &fetchErr) {
		response := api.FetchErrorResponse{
			Error:      api.SOURCEFETCHERROR,
			Message:    fetchErr.Message,
			Url:        fetchErr.URL,
			StatusCode: fetchErr.StatusCode,
			RequestId:  requestID,
		}
		s.writeJSON(w, http.StatusBadGateway, response)
		return
	}

	s.log.WithField("request_id", *requestID).WithError(err).Error("watermark failed")
	s.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR",
		"Internal server error", requestID, nil)
}

func (s *Server) writeImage(w http.ResponseWriter, result *marker.Result) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.ImageData)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.ImageData); err != nil {
		s.log.WithError(err).Warn("error writing response")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("error encoding response")
	}
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	if details != nil {
		response.Details = &details
	}

	s.writeJSON(w, statusCode, response)
}

// writeValidationErrorResponse writes a validation error response
func (s *Server) writeValidationErrorResponse(w http.ResponseWriter, field, message string, requestID *string) {
	response := api.ValidationErrorResponse{
		Error:     api.VALIDATIONERROR,
		Message:   message,
		RequestId: requestID,
		ValidationErrors: []struct {
			Code    *string `json:"code,omitempty"`
			Field   string  `json:"field"`
			Message string  `json:"message"`
		}{
			{
				Field:   field,
				Message: message,
			},
		},
	}

	s.writeJSON(w, http.StatusBadRequest, response)
}

// newRequestID generates a request ID and sets the X-Request-ID header
func newRequestID(w http.ResponseWriter) string {
	id := uuid.New().String()
	w.Header().Set("X-Request-ID", id)
	return id
}
