package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/Pratham4590/PBM-OP-sub000/internal/apierror"
	"github.com/Pratham4590/PBM-OP-sub000/internal/infra"
	"github.com/Pratham4590/PBM-OP-sub000/internal/middleware"
	"github.com/Pratham4590/PBM-OP-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// gt=0 and required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails; the caller
// should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	return runValidator(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return false
	}
	return runValidator(c, req)
}

func runValidator(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// pathUUID parses the named path parameter, writing a 400 when it is malformed.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// callerFrom turns the verified JWT claims into the service's caller identity.
func callerFrom(c *gin.Context) service.Caller {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return service.Caller{}
	}
	id, _ := uuid.Parse(claims.UserID)
	return service.Caller{UserID: id, Username: claims.Username, Role: claims.Role}
}

// writeError maps the service error taxonomy onto HTTP. Anything unrecognised is
// attached to the context for ErrorHandler, which logs it and answers 500.
func writeError(c *gin.Context, err error) {
	var (
		ve  *service.ValidationError
		ice *service.InsufficientCapacityError
		ise *service.InvalidReelStateError
		ce  *service.ConflictError
		pe  *service.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(ve.Fields))
	case errors.As(err, &ice):
		c.JSON(http.StatusConflict, apierror.NewCapacity(ice.Error(), ice.Requested, ice.Available))
	case errors.As(err, &ise):
		c.JSON(http.StatusConflict, apierror.NewCoded(apierror.CodeInvalidReelState, ise.Error()))
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, apierror.NewRetryable(apierror.CodeConflict, "The reel was updated concurrently, please resubmit"))
	case errors.As(err, &pe):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, apierror.NewRetryable(apierror.CodePersistence, "Storage unavailable, nothing was saved"))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.NewCoded(apierror.CodeNotFound, "Not found"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, apierror.NewCoded(apierror.CodeForbidden, "Insufficient permissions"))
	case errors.Is(err, service.ErrDuplicate):
		c.JSON(http.StatusConflict, apierror.NewCoded(apierror.CodeDuplicate, "Already exists"))
	case errors.Is(err, service.ErrReelHasRulings):
		c.JSON(http.StatusConflict, apierror.NewCoded(apierror.CodeInvalidReelState, err.Error()))
	case errors.Is(err, infra.ErrCircuitOpen), errors.Is(err, service.ErrExtractionUnavailable):
		c.JSON(http.StatusBadGateway, apierror.NewRetryable(apierror.CodeUpstream, "Extraction service unavailable"))
	default:
		_ = c.Error(err)
	}
}
