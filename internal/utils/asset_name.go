package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/smartscale/portfolio-api/internal/constants"
)

// GenerateAssetName returns a collision-resistant file name in the format
// project-<unix millis>-<12 hex chars><ext>.
func GenerateAssetName(now time.Time, ext string) (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return fmt.Sprintf("%s%d-%s%s",
		constants.AssetNamePrefix,
		now.UnixMilli(),
		hex.EncodeToString(bytes),
		ext,
	), nil
}
