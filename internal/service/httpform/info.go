package httpform

import (
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"

	"accountpool/internal/credential"
	jsonpkg "accountpool/internal/pkg/json"
)

// infoDocument is the quota payload. Numbers may arrive as JSON numbers or
// strings, traffic also as sizes like "1.5 GB".
type infoDocument struct {
	ValidUntil  any `json:"validuntil"`
	TrafficLeft any `json:"trafficleft"`
	MaxTraffic  any `json:"maxtraffic"`
	Premium     any `json:"premium"`
}

func parseInfo(body []byte) (*credential.Info, error) {
	var doc infoDocument
	if err := jsonpkg.Unmarshal(body, &doc); err != nil {
		return nil, credential.ErrMalformedInfo
	}

	info := &credential.Info{}
	if doc.ValidUntil != nil {
		v, ok := anyToInt64(doc.ValidUntil)
		if !ok {
			return nil, errors.NotValidf("validuntil %v", doc.ValidUntil)
		}
		until := time.Unix(v, 0)
		info.ValidUntil = &until
	}
	if doc.TrafficLeft != nil {
		v, err := traffic(doc.TrafficLeft)
		if err != nil {
			return nil, errors.Annotate(err, "trafficleft")
		}
		info.TrafficLeft = &v
	}
	if doc.MaxTraffic != nil {
		v, err := traffic(doc.MaxTraffic)
		if err != nil {
			return nil, errors.Annotate(err, "maxtraffic")
		}
		info.MaxTraffic = &v
	}
	if doc.Premium != nil {
		v, ok := anyToBool(doc.Premium)
		if !ok {
			return nil, errors.NotValidf("premium %v", doc.Premium)
		}
		info.Premium = &v
	}
	return info, nil
}

// traffic reads a KB amount, or a human size when given as text.
func traffic(v any) (int64, error) {
	if n, ok := anyToInt64(v); ok {
		return n, nil
	}
	if s, ok := v.(string); ok {
		// A bare decimal is still KB, not bytes.
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int64(f), nil
		}
		kb, err := credential.ParseTraffic(s)
		return kb, errors.Trace(err)
	}
	return 0, errors.NotValidf("traffic %v", v)
}

func anyToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func anyToBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int64:
		return b != 0, true
	case float64:
		return b != 0, true
	case string:
		p, err := strconv.ParseBool(strings.TrimSpace(b))
		return p, err == nil
	default:
		return false, false
	}
}
