package entity

import (
	"fmt"

	"github.com/gosimple/slug"
)

// SecondsPerDay sizes the day bucket used by the volume accumulators.
const SecondsPerDay int64 = 86400

type Volume struct {
	Contract  string `json:"contract"`
	DayBucket int64  `json:"dayBucket"`
	Amount    uint64 `json:"amount"`
	Trades    uint64 `json:"trades"`
}

func (v Volume) Slug() string {
	return CreateVolumeSlug(v.Contract, v.DayBucket)
}

func CreateVolumeSlug(contract string, dayBucket int64) string {
	return slug.Make(fmt.Sprintf("volume-%s-%d", contract, dayBucket))
}

// DayBucketFor maps a unix timestamp onto its day bucket.
func DayBucketFor(timestamp int64) int64 {
	return timestamp / SecondsPerDay
}
