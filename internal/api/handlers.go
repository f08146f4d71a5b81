package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCBOR = "application/cbor"

	maxBodyBytes = 1 << 20

	serviceName    = "Crypto Lab"
	serviceVersion = "1.0.0"
)

// Handler serves the Service operations over HTTP.
type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// RegisterRoutes implements RouteRegistrar.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/api/info", h.handleInfo)

	r.Route("/api/ecc", func(r chi.Router) {
		r.Post("/generate_keys", handle(h, h.svc.GenerateKeys))
		r.Post("/encrypt", handle(h, h.svc.Encrypt))
		r.Post("/encrypt_point", handle(h, h.svc.EncryptPoint))
		r.Post("/decrypt", handle(h, h.svc.Decrypt))
		r.Post("/get_curve", handle(h, h.svc.Curve))
		r.Post("/add_points", handle(h, h.svc.AddPoints))
		r.Post("/double_point", handle(h, h.svc.DoublePoint))
		r.Post("/multiply_point", handle(h, h.svc.MultiplyPoint))
	})
	r.Post("/api/generate_ecc_keys", handle(h, h.svc.GenerateKeys))
	r.Post("/api/calculate_curve", handle(h, h.svc.CalculateCurve))
	r.Post("/api/calculate_point_operations", handle(h, h.svc.PointOperation))

	r.Route("/api/rsa", func(r chi.Router) {
		r.Post("/generate_keys", handle(h, h.svc.RSAGenerateKeys))
		r.Post("/encrypt", handle(h, h.svc.RSAEncrypt))
		r.Post("/decrypt", handle(h, h.svc.RSADecrypt))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeResponse(w, r, http.StatusNotFound, &ErrorResponse{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeResponse(w, r, http.StatusMethodNotAllowed, &ErrorResponse{Error: "method not allowed"})
	})
}

// Response is implemented by every successful response type through its
// embedded Envelope.
type Response interface {
	succeed()
}

// handle adapts a Service operation into an http.HandlerFunc: decode the
// request, run the operation, encode the response or the error envelope.
func handle[Req any, Resp Response](h *Handler, op func(*Req) (Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := new(Req)
		if err := decodeRequest(w, r, req); err != nil {
			h.reject(w, r, err)
			return
		}
		resp, err := op(req)
		if err != nil {
			h.reject(w, r, err)
			return
		}
		resp.succeed()
		h.writeResponse(w, r, http.StatusOK, resp)
	}
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Warn("request rejected",
		"method", r.Method,
		"path", r.URL.Path,
		"requestID", middleware.GetReqID(r.Context()),
		"err", err,
	)
	h.writeResponse(w, r, http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
}

// decodeRequest fills v from a JSON or CBOR body. An empty body leaves v
// untouched.
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	var err error
	if isCBOR(r.Header.Get("Content-Type")) {
		err = cbor.NewDecoder(body).Decode(v)
	} else {
		err = json.NewDecoder(body).Decode(v)
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func isCBOR(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == contentTypeCBOR
}

func wantsCBOR(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		if isCBOR(strings.TrimSpace(part)) {
			return true
		}
	}
	return false
}

func (h *Handler) writeResponse(w http.ResponseWriter, r *http.Request, status int, v any) {
	var (
		data        []byte
		err         error
		contentType = contentTypeJSON
	)
	if wantsCBOR(r.Header.Get("Accept")) {
		contentType = contentTypeCBOR
		data, err = cbor.Marshal(v)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		h.log.Error("failed to encode response", "path", r.URL.Path, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		h.log.Debug("failed to write response", "path", r.URL.Path, "err", err)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeResponse(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// Info is the body of GET /api/info.
type Info struct {
	Name      string                       `json:"name"`
	Version   string                       `json:"version"`
	Endpoints map[string]map[string]string `json:"endpoints"`
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	h.writeResponse(w, r, http.StatusOK, &Info{
		Name:    serviceName + " API",
		Version: serviceVersion,
		Endpoints: map[string]map[string]string{
			"ECC": {
				"generate_keys":  "/api/ecc/generate_keys",
				"encrypt":        "/api/ecc/encrypt",
				"encrypt_point":  "/api/ecc/encrypt_point",
				"decrypt":        "/api/ecc/decrypt",
				"get_curve":      "/api/ecc/get_curve",
				"add_points":     "/api/ecc/add_points",
				"double_point":   "/api/ecc/double_point",
				"multiply_point": "/api/ecc/multiply_point",
			},
			"Curve": {
				"calculate_curve":            "/api/calculate_curve",
				"calculate_point_operations": "/api/calculate_point_operations",
				"generate_ecc_keys":          "/api/generate_ecc_keys",
			},
			"RSA": {
				"generate_keys": "/api/rsa/generate_keys",
				"encrypt":       "/api/rsa/encrypt",
				"decrypt":       "/api/rsa/decrypt",
			},
		},
	})
}
