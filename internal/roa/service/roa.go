package service

import (
	"net/http"
	"strconv"

	"github.com/bgpstack/roa-history/internal/pkg/logger"
	"github.com/bgpstack/roa-history/internal/pkg/validator"
	"github.com/bgpstack/roa-history/internal/roa/biz"
	"github.com/gin-gonic/gin"

	apperrors "github.com/bgpstack/roa-history/internal/pkg/errors"
)

// ROAService exposes the lookup API over HTTP.
type ROAService struct {
	uc     *biz.ROAUseCase
	logger *logger.Logger
}

func NewROAService(uc *biz.ROAUseCase, log *logger.Logger) *ROAService {
	return &ROAService{
		uc:     uc,
		logger: log,
	}
}

// LookupResponse is the canonical result envelope. Error and populated Data
// are mutually exclusive; Data is always present, empty on failure.
type LookupResponse struct {
	Limit       int          `json:"limit"`
	Count       int          `json:"count"`
	NextPageNum *int         `json:"next_page_num"`
	NextPage    *string      `json:"next_page"`
	Error       *string      `json:"error"`
	Data        []*biz.Entry `json:"data"`
}

// FilesResponse is the envelope for the dump file listing.
type FilesResponse struct {
	Count int             `json:"count"`
	Error *string         `json:"error,omitempty"`
	Data  []*biz.DumpFile `json:"data"`
}

// Lookup handles GET /lookup.
func (s *ROAService) Lookup(c *gin.Context) {
	pretty := isPretty(c)

	filter, err := parseLookupFilter(c)
	if err != nil {
		s.renderLookupError(c, pretty, filter.Limit, err)
		return
	}

	result, err := s.uc.Lookup(c.Request.Context(), filter)
	if err != nil {
		s.renderLookupError(c, pretty, filter.Limit, err)
		return
	}

	renderJSON(c, http.StatusOK, pretty, &LookupResponse{
		Limit:       result.Limit,
		Count:       result.Count,
		NextPageNum: result.NextPageNum,
		NextPage:    result.NextPage,
		Data:        result.Entries,
	})
}

// Files handles GET /files.
func (s *ROAService) Files(c *gin.Context) {
	pretty := isPretty(c)

	files, err := s.uc.ListFiles(c.Request.Context(), c.Query("tal"))
	if err != nil {
		msg := apperrors.GetDetails(err)
		renderJSON(c, apperrors.GetHTTPStatus(apperrors.ExtractCode(err)), pretty, &FilesResponse{
			Count: 0,
			Error: &msg,
			Data:  []*biz.DumpFile{},
		})
		return
	}

	if files == nil {
		files = []*biz.DumpFile{}
	}
	renderJSON(c, http.StatusOK, pretty, &FilesResponse{
		Count: len(files),
		Data:  files,
	})
}

func (s *ROAService) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/lookup", s.Lookup)
	r.GET("/files", s.Files)
}

// parseLookupFilter coerces raw query parameters into a filter. The -1 wire
// sentinel for asn/max_len is accepted for compatibility and mapped to
// "unconstrained"; any negative value means the same. The returned filter is
// usable for error reporting even when coercion fails.
func parseLookupFilter(c *gin.Context) (*biz.LookupFilter, error) {
	f := &biz.LookupFilter{
		Prefix: validator.NormalizePrefix(c.Query("prefix")),
		TAL:    c.Query("tal"),
		Date:   c.Query("date"),
		Limit:  biz.DefaultLimit,
		Page:   1,
	}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, apperrors.NewValidationError("parameters validation failed: limit must be an integer")
		}
		if n > 0 {
			f.Limit = n
		}
	}

	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, apperrors.NewValidationError("parameters validation failed: page must be an integer")
		}
		f.Page = n
	}

	if v := c.Query("asn"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, apperrors.NewValidationError("parameters validation failed: asn must be an integer")
		}
		if n >= 0 {
			f.ASN = &n
		}
	}

	if v := c.Query("max_len"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, apperrors.NewValidationError("parameters validation failed: max_len must be an integer")
		}
		if n >= 0 {
			f.MaxLen = &n
		}
	}

	return f, nil
}

func (s *ROAService) renderLookupError(c *gin.Context, pretty bool, limit int, err error) {
	msg := apperrors.GetDetails(err)
	renderJSON(c, apperrors.GetHTTPStatus(apperrors.ExtractCode(err)), pretty, &LookupResponse{
		Limit: limit,
		Count: 0,
		Error: &msg,
		Data:  []*biz.Entry{},
	})
}

func isPretty(c *gin.Context) bool {
	pretty, err := strconv.ParseBool(c.DefaultQuery("pretty", "false"))
	return err == nil && pretty
}

// renderJSON writes the envelope in indented or compact form. Both modes
// produce the same field set and ordering.
func renderJSON(c *gin.Context, status int, pretty bool, v interface{}) {
	if pretty {
		c.IndentedJSON(status, v)
		return
	}
	c.JSON(status, v)
}
