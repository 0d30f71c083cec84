package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"linktrail/internal/config"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
	"github.com/redis/go-redis/v9"
)

// Location is the coarse result of an IP lookup. Sentinel values stand in
// when no real data is available so aggregation never special-cases.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Country   string  `json:"country"`
	City      string  `json:"city"`
}

// LocalLocation is returned for loopback and private-range addresses
// without any lookup.
func LocalLocation() Location {
	return Location{Country: "Local", City: "Local"}
}

// UnknownLocation is returned when every lookup layer fails.
func UnknownLocation() Location {
	return Location{Country: "Unknown", City: "Unknown"}
}

type geoReader interface {
	City(ip net.IP) (*geoip2.City, error)
	Metadata() maxminddb.Metadata
	Close() error
}

type GeoService struct {
	cfg        config.Config
	logger     *slog.Logger
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration
	geoReader  geoReader
	geoLock    sync.RWMutex
}

// NewGeoService builds the resolver. rdb may be nil, in which case lookups
// are uncached.
func NewGeoService(cfg config.Config, logger *slog.Logger, rdb *redis.Client) *GeoService {
	timeout := time.Duration(cfg.GeoLookupTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ttl := time.Duration(cfg.GeoCacheTTLMin) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &GeoService{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		cache:      rdb,
		cacheTTL:   ttl,
	}
}

// Resolve maps an IP address to a coarse location. It never fails: any
// lookup error degrades to the Unknown sentinel so visit recording is not
// aborted by a slow or broken lookup.
func (s *GeoService) Resolve(ctx context.Context, ipStr string) Location {
	if isPrivateAddress(ipStr) {
		return LocalLocation()
	}

	if net.ParseIP(ipStr) == nil {
		return UnknownLocation()
	}

	if loc, ok := s.cachedLocation(ctx, ipStr); ok {
		return loc
	}

	loc, ok := s.lookupLocal(ipStr)
	if !ok {
		loc, ok = s.lookupHTTP(ctx, ipStr)
	}
	if !ok {
		return UnknownLocation()
	}

	s.storeCached(ctx, ipStr, loc)
	return loc
}

// isPrivateAddress matches loopback and RFC1918-style ranges that must
// short-circuit without an external call.
func isPrivateAddress(ipStr string) bool {
	if ipStr == "127.0.0.1" || ipStr == "::1" || ipStr == "localhost" {
		return true
	}
	for _, prefix := range []string{"10.", "192.168.", "172."} {
		if strings.HasPrefix(ipStr, prefix) {
			return true
		}
	}
	ip := net.ParseIP(ipStr)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}

func (s *GeoService) cachedLocation(ctx context.Context, ipStr string) (Location, bool) {
	if s.cache == nil {
		return Location{}, false
	}
	val, err := s.cache.Get(ctx, "geo:"+ipStr).Result()
	if err != nil {
		return Location{}, false
	}
	var loc Location
	if err := json.Unmarshal([]byte(val), &loc); err != nil {
		return Location{}, false
	}
	return loc, true
}

func (s *GeoService) storeCached(ctx context.Context, ipStr string, loc Location) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, "geo:"+ipStr, data, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("Geo: cache write failed", "ip", ipStr, "error", err)
	}
}

// lookupLocal consults the MaxMind database if one is loaded.
func (s *GeoService) lookupLocal(ipStr string) (Location, bool) {
	s.geoLock.RLock()
	reader := s.geoReader
	s.geoLock.RUnlock()

	if reader == nil {
		return Location{}, false
	}

	record, err := reader.City(net.ParseIP(ipStr))
	if err != nil {
		s.logger.Error("Geo: local lookup error", "ip", ipStr, "error", err)
		return Location{}, false
	}

	loc := Location{
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}
	if name, ok := record.Country.Names["en"]; ok {
		loc.Country = name
	} else {
		loc.Country = record.Country.IsoCode
	}
	if name, ok := record.City.Names["en"]; ok {
		loc.City = name
	}
	if loc.Country == "" {
		return Location{}, false
	}
	return loc, true
}

type geoAPIResponse struct {
	Status  string  `json:"status"`
	Country string  `json:"country"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// lookupHTTP performs the bounded external lookup. The client timeout caps
// how long a tracking request can stall on a dead endpoint.
func (s *GeoService) lookupHTTP(ctx context.Context, ipStr string) (Location, bool) {
	url := strings.TrimSuffix(s.cfg.GeoAPIURL, "/") + "/" + ipStr
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}, false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("Geo: lookup request failed", "ip", ipStr, "error", err)
		return Location{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("Geo: lookup returned non-OK status", "ip", ipStr, "status", resp.StatusCode)
		return Location{}, false
	}

	var parsed geoAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		s.logger.Warn("Geo: malformed lookup response", "ip", ipStr, "error", err)
		return Location{}, false
	}
	if parsed.Status != "success" {
		return Location{}, false
	}

	return Location{
		Latitude:  parsed.Lat,
		Longitude: parsed.Lon,
		Country:   parsed.Country,
		City:      parsed.City,
	}, true
}

// Init loads the local MaxMind database if credentials are configured,
// downloading it first when missing.
func (s *GeoService) Init() {
	if s.cfg.MaxMindAccountID == "" || s.cfg.MaxMindLicenseKey == "" {
		s.logger.Info("Geo: MaxMind credentials not set, using HTTP lookups only")
		return
	}

	dbPath := s.cfg.MaxMindDBPath
	dbDir := filepath.Dir(dbPath)

	if err := os.MkdirAll(dbDir, 0755); err != nil {
		s.logger.Error("Geo: failed to create directory", "dir", dbDir, "error", err)
		return
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		s.logger.Info("Geo: database missing, downloading...")
		if err := s.updateGeoDB(); err != nil {
			s.logger.Error("Geo: initial download failed", "error", err)
		}
	}

	s.reloadReader(dbPath)
}

// StartUpdater refreshes the MaxMind database daily.
func (s *GeoService) StartUpdater(ctx context.Context) {
	s.StartUpdaterWithInterval(ctx, 24*time.Hour)
}

func (s *GeoService) StartUpdaterWithInterval(ctx context.Context, interval time.Duration) {
	if s.cfg.MaxMindAccountID == "" {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.logger.Info("Geo: running scheduled database update...")
			if err := s.updateGeoDB(); err != nil {
				s.logger.Error("Geo: update failed", "error", err)
				continue
			}
			s.reloadReader(s.cfg.MaxMindDBPath)
		case <-ctx.Done():
			s.logger.Info("Geo: updater stopping")
			return
		}
	}
}

func (s *GeoService) updateGeoDB() error {
	dbDir := filepath.Dir(s.cfg.MaxMindDBPath)
	confPath := filepath.Join(dbDir, "GeoIP.conf")

	content := fmt.Sprintf("AccountID %s\nLicenseKey %s\nEditionIDs %s\nDatabaseDirectory %s\n",
		s.cfg.MaxMindAccountID, s.cfg.MaxMindLicenseKey, s.cfg.MaxMindEditionIDs, dbDir)

	if err := os.WriteFile(confPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write GeoIP.conf: %w", err)
	}
	defer os.Remove(confPath)

	cmd := exec.Command("geoipupdate", "-v", "-f", confPath, "-d", dbDir)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("geoipupdate failed: %w, output: %s", err, string(output))
	}

	s.logger.Info("Geo: database updated successfully")
	return nil
}

func (s *GeoService) reloadReader(path string) {
	s.geoLock.Lock()
	defer s.geoLock.Unlock()

	if s.geoReader != nil {
		s.geoReader.Close()
	}
	s.geoReader = nil

	reader, err := geoip2.Open(path)
	if err != nil {
		s.logger.Error("Geo: failed to open database", "path", path, "error", err)
		return
	}
	s.geoReader = reader

	meta := reader.Metadata()
	s.logger.Info("Geo: loaded database", "epoch", meta.BuildEpoch)
}

const earthRadiusKM = 6371.0

// Distance returns the great-circle distance in kilometers between two
// coordinate pairs (haversine).
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
