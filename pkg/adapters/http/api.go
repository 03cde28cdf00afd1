package http

import (
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

//go:embed openapi.yaml
var rawSpec []byte

var (
	specOnce sync.Once
	spec     *openapi3.T
	specErr  error
)

// GetSwagger returns the parsed and validated API contract.
func GetSwagger() (*openapi3.T, error) {
	specOnce.Do(func() {
		loader := openapi3.NewLoader()
		spec, specErr = loader.LoadFromData(rawSpec)
		if specErr != nil {
			return
		}
		specErr = spec.Validate(loader.Context)
	})
	return spec, specErr
}

// TreeFormat selects the shape of tree responses.
type TreeFormat string

const (
	FormatNested TreeFormat = "nested"
	FormatFlat   TreeFormat = "flat"
)

// Valid reports whether f is a known format.
func (f TreeFormat) Valid() bool {
	return f == FormatNested || f == FormatFlat
}

// GetRunTreeParams defines parameters for GetRunTree.
type GetRunTreeParams struct {
	Format *TreeFormat `form:"format,omitempty" json:"format,omitempty"`
}

// NormalizeTreeParams defines parameters for NormalizeTree.
type NormalizeTreeParams struct {
	Format *TreeFormat `form:"format,omitempty" json:"format,omitempty"`
}

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /info)
	GetInfo(w http.ResponseWriter, r *http.Request)
	// (GET /runs/{runId}/tree)
	GetRunTree(w http.ResponseWriter, r *http.Request, runID int64, params GetRunTreeParams)
	// (DELETE /runs/{runId}/tree)
	InvalidateRunTree(w http.ResponseWriter, r *http.Request, runID int64)
	// (GET /runs/{runId}/tree/nodes/{nodeId}/path)
	GetNodePath(w http.ResponseWriter, r *http.Request, runID int64, nodeID int64)
	// (POST /tree/normalize)
	NormalizeTree(w http.ResponseWriter, r *http.Request, params NormalizeTreeParams)
}

// ParamError reports a parameter that failed to bind.
type ParamError struct {
	Param string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %v", e.Param, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// serverWrapper binds path and query parameters before calling the handler.
type serverWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (sw *serverWrapper) pathInt64(r *http.Request, name string) (int64, error) {
	var v int64
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return 0, &ParamError{Param: name, Err: err}
	}
	return v, nil
}

func (sw *serverWrapper) format(r *http.Request) (*TreeFormat, error) {
	var f *TreeFormat
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &f); err != nil {
		return nil, &ParamError{Param: "format", Err: err}
	}
	if f != nil && !f.Valid() {
		return nil, &ParamError{Param: "format", Err: fmt.Errorf("must be %q or %q", FormatNested, FormatFlat)}
	}
	return f, nil
}

func (sw *serverWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	sw.Handler.GetHealth(w, r)
}

func (sw *serverWrapper) GetInfo(w http.ResponseWriter, r *http.Request) {
	sw.Handler.GetInfo(w, r)
}

func (sw *serverWrapper) GetRunTree(w http.ResponseWriter, r *http.Request) {
	runID, err := sw.pathInt64(r, "runId")
	if err != nil {
		sw.ErrorHandlerFunc(w, r, err)
		return
	}
	format, err := sw.format(r)
	if err != nil {
		sw.ErrorHandlerFunc(w, r, err)
		return
	}
	sw.Handler.GetRunTree(w, r, runID, GetRunTreeParams{Format: format})
}

func (sw *serverWrapper) InvalidateRunTree(w http.ResponseWriter, r *http.Request) {
	runID, err := sw.pathInt64(r, "runId")
	if err != nil {
		sw.ErrorHandlerFunc(w, r, err)
		return
	}
	sw.Handler.InvalidateRunTree(w, r, runID)
}

func (sw *serverWrapper) GetNodePath(w http.ResponseWriter, r *http.Request) {
	runID, err := sw.pathInt64(r, "runId")
	if err != nil {
		sw.ErrorHandlerFunc(w, r, err)
		return
	}
	nodeID, err := sw.pathInt64(r, "nodeId")
	if err != nil {
		sw.ErrorHandlerFunc(w, r, err)
		return
	}
	sw.Handler.GetNodePath(w, r, runID, nodeID)
}

func (sw *serverWrapper) NormalizeTree(w http.ResponseWriter, r *http.Request) {
	format, err := sw.format(r)
	if err != nil {
		sw.ErrorHandlerFunc(w, r, err)
		return
	}
	sw.Handler.NormalizeTree(w, r, NormalizeTreeParams{Format: format})
}

// HandlerFromMux registers the API routes of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router, errorHandler func(w http.ResponseWriter, r *http.Request, err error)) http.Handler {
	sw := &serverWrapper{Handler: si, ErrorHandlerFunc: errorHandler}

	r.Get("/health", sw.GetHealth)
	r.Get("/info", sw.GetInfo)
	r.Get("/runs/{runId}/tree", sw.GetRunTree)
	r.Delete("/runs/{runId}/tree", sw.InvalidateRunTree)
	r.Get("/runs/{runId}/tree/nodes/{nodeId}/path", sw.GetNodePath)
	r.Post("/tree/normalize", sw.NormalizeTree)
	return r
}
