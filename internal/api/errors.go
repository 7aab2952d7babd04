package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependency kinds reported to clients.
const (
	KindStorage = "storage"
	KindCache   = "cache"
)

// ErrDependency matches every DependencyError through errors.Is.
var ErrDependency = errors.New("dependency failure")

// DependencyError reports a failing collaborator such as the database.
type DependencyError struct {
	Kind string
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s dependency failure: %v", e.Kind, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

func (e *DependencyError) Is(target error) bool { return target == ErrDependency }

// Dependency wraps err as a DependencyError of the given kind.
func Dependency(kind string, err error) error {
	if err == nil {
		return nil
	}
	return &DependencyError{Kind: kind, Err: err}
}

// NotFoundError is returned when a named resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " does not exist"
}

// NotFound builds a NotFoundError for resource.
func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// WriteError renders err as JSON and aborts the request.
// Unknown errors become a bare 500; their details only reach the log.
func WriteError(c *gin.Context, err error) {
	var nf *NotFoundError
	var dep *DependencyError
	switch {
	case errors.As(err, &nf):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: nf.Error()})
	case errors.As(err, &dep):
		zap.L().Error("dependency failure",
			zap.String("kind", dep.Kind),
			zap.String("path", c.Request.URL.Path),
			zap.Error(dep.Err),
		)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "dependency failure", Kind: dep.Kind})
	default:
		zap.L().Error("unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
