package types

// AssetStatus describes the outcome of generating a single asset.
type AssetStatus string

const (
	AssetReady   AssetStatus = "ready"
	AssetSkipped AssetStatus = "skipped"
	AssetFailed  AssetStatus = "failed"
)

// GeneratedAsset records the result of one per-item generation attempt.
// Index is 1-based and stage-local; caption i, voiceover i and image i all
// refer to the same script line.
type GeneratedAsset struct {
	Index  int         `json:"index"`
	Path   string      `json:"path"`
	Status AssetStatus `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// Progress reports per-stage completion at item boundaries. A nil Progress is
// a no-op; completed counts resolved items regardless of their status.
type Progress func(completed, total int)

// CountByStatus returns how many assets carry the given status.
func CountByStatus(assets []GeneratedAsset, status AssetStatus) int {
	n := 0
	for _, a := range assets {
		if a.Status == status {
			n++
		}
	}
	return n
}
