package services

import (
	"math"
	"sort"
	"time"

	"linktrail/internal/models"
	"linktrail/internal/repository"
)

const (
	distributionCap   = 10
	defaultRecentSize = 20
)

type BucketCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Summary is the full aggregation over one selected visit set.
type Summary struct {
	TotalClicks    int                    `json:"total_clicks"`
	UniqueVisitors int                    `json:"unique_visitors"`
	Countries      []repository.CountStat `json:"countries"`
	Cities         []repository.CountStat `json:"cities"`
	Devices        []repository.CountStat `json:"devices"`
	Browsers       []repository.CountStat `json:"browsers"`
	Daily          []BucketCount          `json:"daily"`
	Hourly         []HourCount            `json:"hourly"`
	AvgPerDay      int                    `json:"avg_per_day"`
	Recent         []models.Visit         `json:"recent"`
}

// DateWindow selects visits with [Start, End) semantics.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// Days is the window length in whole days, never below one so it is always
// a safe divisor.
func (w DateWindow) Days() int {
	days := int(w.End.Sub(w.Start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// Aggregate computes every summary figure from an in-memory visit slice. It
// is pure: no storage access, no failure modes, empty input yields zeroes
// and empty sequences.
func Aggregate(visits []models.Visit, window DateWindow, recentLimit int) Summary {
	if recentLimit <= 0 {
		recentLimit = defaultRecentSize
	}

	s := Summary{
		TotalClicks:    len(visits),
		UniqueVisitors: countUnique(visits),
		Countries:      distribution(visits, func(v models.Visit) string { return v.Country }, true, distributionCap),
		Cities:         distribution(visits, func(v models.Visit) string { return v.City }, true, distributionCap),
		Devices:        distribution(visits, func(v models.Visit) string { return v.Device }, false, 0),
		Browsers:       distribution(visits, func(v models.Visit) string { return v.Browser }, false, 0),
		Daily:          dailyBuckets(visits),
		Hourly:         hourlyBuckets(visits),
		Recent:         recentVisits(visits, recentLimit),
	}

	s.AvgPerDay = int(math.Round(float64(s.TotalClicks) / float64(window.Days())))
	return s
}

func countUnique(visits []models.Visit) int {
	seen := make(map[string]struct{}, len(visits))
	for _, v := range visits {
		seen[v.IPAddress] = struct{}{}
	}
	return len(seen)
}

// distribution groups visits by key, descending by count, ties broken by
// key so output is deterministic. skipEmpty drops visits with an absent
// key; otherwise they count under "Unknown". limit 0 means uncapped.
func distribution(visits []models.Visit, key func(models.Visit) string, skipEmpty bool, limit int) []repository.CountStat {
	counts := make(map[string]int)
	for _, v := range visits {
		k := key(v)
		if k == "" {
			if skipEmpty {
				continue
			}
			k = BrowserUnknown
		}
		counts[k]++
	}

	stats := make([]repository.CountStat, 0, len(counts))
	for k, c := range counts {
		stats = append(stats, repository.CountStat{Key: k, Count: c})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Key < stats[j].Key
	})

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func dailyBuckets(visits []models.Visit) []BucketCount {
	counts := make(map[string]int)
	for _, v := range visits {
		counts[v.VisitedAt.UTC().Format("2006-01-02")]++
	}

	buckets := make([]BucketCount, 0, len(counts))
	for day, c := range counts {
		buckets = append(buckets, BucketCount{Bucket: day, Count: c})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Bucket < buckets[j].Bucket })
	return buckets
}

// hourlyBuckets counts by hour of day across the whole set, not per day.
func hourlyBuckets(visits []models.Visit) []HourCount {
	counts := make(map[int]int)
	for _, v := range visits {
		counts[v.VisitedAt.UTC().Hour()]++
	}

	buckets := make([]HourCount, 0, len(counts))
	for hour, c := range counts {
		buckets = append(buckets, HourCount{Hour: hour, Count: c})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Hour < buckets[j].Hour })
	return buckets
}

func recentVisits(visits []models.Visit, limit int) []models.Visit {
	recent := make([]models.Visit, len(visits))
	copy(recent, visits)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].VisitedAt.After(recent[j].VisitedAt)
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// AnalyticsService selects a visit set and aggregates it.
type AnalyticsService struct {
	store repository.Store
}

func NewAnalyticsService(store repository.Store) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Summarize loads visits for the link (empty linkID = all links) within the
// window and aggregates them.
func (a *AnalyticsService) Summarize(linkID string, window DateWindow, recentLimit int) (*Summary, error) {
	visits, err := a.store.VisitsInRange(linkID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	summary := Aggregate(visits, window, recentLimit)
	return &summary, nil
}

// Stats exposes the storage-side aggregates for dashboards that do not
// need the full summary.
func (a *AnalyticsService) Stats(linkID string) (*repository.LinkStats, error) {
	return a.store.Stats(linkID)
}
