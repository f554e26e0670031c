package catalog

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

var ErrInvalidFilter = errors.New("invalid filter")

type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// Filter is the decoded product listing query. Zero values mean "not set".
type Filter struct {
	Title      string
	MinPrice   float64
	MaxPrice   float64
	CategoryID uuid.UUID
	Size       models.Size

	SortTitle   SortDir
	SortCreated SortDir
	SortPrice   SortDir

	Limit  int
	Offset int
}

// ParseFilter decodes untrusted query parameters.
func ParseFilter(q url.Values) (Filter, error) {
	var (
		f   Filter
		err error
	)
	f.Title = q.Get("title")

	if f.MinPrice, err = parsePrice(q, "min_price"); err != nil {
		return Filter{}, err
	}
	if f.MaxPrice, err = parsePrice(q, "max_price"); err != nil {
		return Filter{}, err
	}
	if f.Limit, err = parseCount(q, "limit"); err != nil {
		return Filter{}, err
	}
	if f.Offset, err = parseCount(q, "offset"); err != nil {
		return Filter{}, err
	}

	if v := strings.TrimSpace(q.Get("category")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: category is not a uuid", ErrInvalidFilter)
		}
		f.CategoryID = id
	}
	if v := strings.TrimSpace(q.Get("size")); v != "" {
		s, err := models.ParseSize(v)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		f.Size = s
	}

	for key, dst := range map[string]*SortDir{
		"sort_title":   &f.SortTitle,
		"sort_created": &f.SortCreated,
		"sort_price":   &f.SortPrice,
	} {
		d, err := parseSort(q, key)
		if err != nil {
			return Filter{}, err
		}
		*dst = d
	}
	return f, nil
}

func parsePrice(q url.Values, key string) (float64, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidFilter, key)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidFilter, key)
	}
	return n, nil
}

func parseCount(q url.Values, key string) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidFilter, key)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidFilter, key)
	}
	return n, nil
}

func parseSort(q url.Values, key string) (SortDir, error) {
	switch v := strings.ToLower(strings.TrimSpace(q.Get(key))); v {
	case "":
		return "", nil
	case "asc", "1":
		return Asc, nil
	case "desc", "-1":
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: %s must be asc or desc", ErrInvalidFilter, key)
	}
}
