package embeddings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// decodeVector accepts either a JSON array of numbers or a JSON object whose
// keys are component indexes ({"0": 0.1, "1": 0.2}) and returns the
// components in index order.
func decodeVector(raw json.RawMessage) ([]float32, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("embedding values missing")
	}

	switch raw[0] {
	case '[':
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err != nil {
			return nil, fmt.Errorf("decode embedding array: %w", err)
		}
		return vec, nil
	case '{':
		var keyed map[string]float32
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, fmt.Errorf("decode keyed embedding: %w", err)
		}
		return orderKeyed(keyed)
	default:
		return nil, fmt.Errorf("unexpected embedding encoding %q", truncateRaw(raw))
	}
}

func orderKeyed(keyed map[string]float32) ([]float32, error) {
	type component struct {
		idx int
		val float32
	}
	comps := make([]component, 0, len(keyed))
	for k, v := range keyed {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("embedding component key %q is not an index", k)
		}
		comps = append(comps, component{idx: idx, val: v})
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i].idx < comps[j].idx })

	vec := make([]float32, len(comps))
	for i, c := range comps {
		vec[i] = c.val
	}
	return vec, nil
}

func truncateRaw(raw []byte) string {
	if len(raw) > 32 {
		return string(raw[:32]) + "..."
	}
	return string(raw)
}
