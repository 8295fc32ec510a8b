package convert

import (
	"convertbox/internal/domain"
	"convertbox/internal/domain/model"
)

// Tier maps preserve the original product semantics: "high" is the highest
// COMPRESSION (smallest output), so it maps to the lowest encoder quality and
// the lowest bitrate.

var imageQualityByTier = map[model.Tier]int{
	model.TierHigh:   30,
	model.TierMedium: 60,
	model.TierLow:    85,
}

var videoBitrateByTier = map[model.Tier]string{
	model.TierHigh:   "500k",
	model.TierMedium: "1000k",
	model.TierLow:    "2000k",
}

func ImageQuality(t model.Tier) (int, error) {
	q, ok := imageQualityByTier[t]
	if !ok {
		return 0, domain.ErrUnknownTier
	}
	return q, nil
}

func VideoBitrate(t model.Tier) (string, error) {
	b, ok := videoBitrateByTier[t]
	if !ok {
		return "", domain.ErrUnknownTier
	}
	return b, nil
}
