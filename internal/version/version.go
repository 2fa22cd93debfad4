// Package version centralizes the versioning for the logical components of the
// analysis service.
//
// Including these version strings in cache keys automatically invalidates old
// cached analyses whenever the underlying logic changes. For example, when the
// rule-based heuristics are retuned and Heuristics moves from "v1.0" to "v1.1",
// every key minted under the old version stops matching and the service
// re-scores the prompt instead of serving a stale result.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComponentVersions holds the version strings for the parts of the service
// whose output shapes cached results. Increment the relevant entry before
// deploying a change to that component.
var ComponentVersions = struct {
	// Heuristics covers the rule-based analyzer: its lexicons, base scores
	// and multipliers.
	Heuristics string

	// PromptTemplate covers the meta-prompt sent to the model and the
	// response schema the parser expects.
	PromptTemplate string
}{
	Heuristics:     "v1.0",
	PromptTemplate: "v1.0",
}

// CacheKey creates a consistent, version-aware key for caching analysis
// results. The fingerprint should already be normalized by the caller; it is
// hashed here so keys have a fixed length regardless of prompt size.
//
// Example output: "promptcache:a1b2c3d4...:hv1.0_pv1.0"
func CacheKey(prefix, fingerprint string) string {
	hasher := sha256.New()
	hasher.Write([]byte(fingerprint))
	digest := hex.EncodeToString(hasher.Sum(nil))

	versions := fmt.Sprintf("hv%s_pv%s",
		ComponentVersions.Heuristics,
		ComponentVersions.PromptTemplate,
	)

	return fmt.Sprintf("%s:%s:%s", prefix, digest, versions)
}
