// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package service

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/venuerec/internal/cache"
	"github.com/tomtom215/venuerec/internal/catalog"
	"github.com/tomtom215/venuerec/internal/geo"
	"github.com/tomtom215/venuerec/internal/metrics"
	"github.com/tomtom215/venuerec/internal/models"
	"github.com/tomtom215/venuerec/internal/recommend"
)

func TestNew(t *testing.T) {
	t.Parallel()

	engine, _ := recommend.NewEngine(nil, zerolog.Nop())
	cat := catalog.NewMemoryCatalog()

	if _, err := New(DefaultConfig(), nil, cat, nil, zerolog.Nop()); err == nil {
		t.Error("New() without engine should fail")
	}
	if _, err := New(DefaultConfig(), engine, nil, nil, zerolog.Nop()); err == nil {
		t.Error("New() without catalog should fail")
	}
	bad := DefaultConfig()
	bad.PriceTolerance = 2
	if _, err := New(bad, engine, cat, nil, zerolog.Nop()); err == nil {
		t.Error("New() with invalid config should fail")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero tolerance", func(c *Config) { c.PriceTolerance = 0 }, false},
		{"negative tolerance", func(c *Config) { c.PriceTolerance = -0.1 }, true},
		{"zero scan limit", func(c *Config) { c.FallbackScanLimit = 0 }, true},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, true},
		{"negative warm limit", func(c *Config) { c.WarmLimit = -1 }, true},
		{"warm without concurrency", func(c *Config) { c.WarmLimit = 10; c.WarmConcurrency = 0 }, true},
		{"zero compute timeout", func(c *Config) { c.ComputeTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecommend_WorkedExample(t *testing.T) {
	t.Parallel()

	svc := newService(t, catalog.NewMemoryCatalog(exampleVenues()...), nil)
	svc.SetArtifacts(trainSet(t, exampleVenues(), 1), nil)

	resp, cached, err := svc.Recommend(context.Background(), Request{VenueID: 1, N: 2, MaxDistanceKm: 15})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if cached {
		t.Error("first response reported as cached")
	}
	if resp.Degraded {
		t.Error("response marked degraded with a model loaded")
	}
	if resp.ModelVersion != 1 {
		t.Errorf("ModelVersion = %d, want 1", resp.ModelVersion)
	}
	if resp.Venue.Name != "A" {
		t.Errorf("Venue = %+v, want A", resp.Venue)
	}

	for name, list := range map[string][]models.RecommendedVenue{
		"similar":       resp.Similar,
		"same_location": resp.SameLocation,
		"price_match":   resp.PriceMatch,
	} {
		if !reflect.DeepEqual(venueIDs(list), []int64{2}) {
			t.Errorf("%s = %v, want [2]", name, venueIDs(list))
			continue
		}
		if list[0].Rank != 1 || list[0].Name != "B" || list[0].DistanceKm <= 0 {
			t.Errorf("%s[0] = %+v", name, list[0])
		}
	}
	if resp.Reference.Source != "venue" || resp.Reference.Lat != 27.70 {
		t.Errorf("Reference = %+v, want venue coordinates", resp.Reference)
	}
}

func TestRecommend_UnknownVenue(t *testing.T) {
	t.Parallel()

	svc := newService(t, catalog.NewMemoryCatalog(exampleVenues()...), nil)
	svc.SetArtifacts(trainSet(t, exampleVenues(), 1), nil)

	before := testutil.ToFloat64(metrics.RecommendationRequests.WithLabelValues(metrics.OutcomeNotFound))
	_, _, err := svc.Recommend(context.Background(), Request{VenueID: 99})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Recommend() error = %v, want ErrNotFound", err)
	}
	if after := testutil.ToFloat64(metrics.RecommendationRequests.WithLabelValues(metrics.OutcomeNotFound)); after < before+1 {
		t.Errorf("not_found outcome not recorded: %f -> %f", before, after)
	}
}

func TestRecommend_CatalogFailure(t *testing.T) {
	t.Parallel()

	svc := newService(t, downCatalog{catalog.NewMemoryCatalog()}, nil)
	if _, _, err := svc.Recommend(context.Background(), Request{VenueID: 1}); !errors.Is(err, errCatalogDown) {
		t.Errorf("Recommend() error = %v, want catalog error", err)
	}
}

func TestRecommend_InvalidReferenceFallsBackToVenue(t *testing.T) {
	t.Parallel()

	svc := newService(t, catalog.NewMemoryCatalog(exampleVenues()...), nil)
	svc.SetArtifacts(trainSet(t, exampleVenues(), 1), nil)

	before := testutil.ToFloat64(metrics.RecommendationInvalidReferences)
	resp, _, err := svc.Recommend(context.Background(), Request{
		VenueID:   1,
		Reference: &geo.Point{Lat: 200, Lng: 85.3},
		N:         2,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Reference.Source != "venue" || resp.Reference.Lat != 27.70 {
		t.Errorf("Reference = %+v, want venue coordinates", resp.Reference)
	}
	if !reflect.DeepEqual(venueIDs(resp.SameLocation), []int64{2}) {
		t.Errorf("same_location = %v, want [2]", venueIDs(resp.SameLocation))
	}
	if after := testutil.ToFloat64(metrics.RecommendationInvalidReferences); after < before+1 {
		t.Errorf("invalid reference not counted: %f -> %f", before, after)
	}
}

func TestRecommend_ReferenceOverride(t *testing.T) {
	t.Parallel()

	svc := newService(t, catalog.NewMemoryCatalog(exampleVenues()...), nil)
	svc.SetArtifacts(trainSet(t, exampleVenues(), 1), nil)

	resp, _, err := svc.Recommend(context.Background(), Request{
		VenueID:   1,
		Reference: &geo.Point{Lat: 28.20, Lng: 84.00},
		N:         2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Reference.Source != "request" {
		t.Errorf("Reference.Source = %s, want request", resp.Reference.Source)
	}
	if !reflect.DeepEqual(venueIDs(resp.SameLocation), []int64{3}) {
		t.Errorf("same_location = %v, want [3]", venueIDs(resp.SameLocation))
	}
}

func TestRecommend_RankOrderSurvivesUnorderedFetch(t *testing.T) {
	t.Parallel()

	venues := make([]models.Venue, 0, 12)
	for i := int64(1); i <= 12; i++ {
		venues = append(venues, models.Venue{
			ID: i, CityID: 10,
			Lat: 27.70 + float64(i)*0.001, Lng: 85.30 + float64(i)*0.001,
			VegPrice: models.Price(300 + float64(i)),
		})
	}
	set := trainSet(t, venues, 1)

	engine, _ := recommend.NewEngine(nil, zerolog.Nop())
	want, err := engine.Recommend(context.Background(), set, recommend.Request{Target: venues[0], N: 8})
	if err != nil {
		t.Fatal(err)
	}

	svc := newService(t, reversingCatalog{catalog.NewMemoryCatalog(venues...)}, nil)
	svc.SetArtifacts(set, nil)

	resp, _, err := svc.Recommend(context.Background(), Request{VenueID: 1, N: 8})
	if err != nil {
		t.Fatal(err)
	}

	for _, intent := range recommend.AllIntents {
		var got []models.RecommendedVenue
		switch intent {
		case recommend.IntentSimilar:
			got = resp.Similar
		case recommend.IntentSameLocation:
			got = resp.SameLocation
		case recommend.IntentPriceMatch:
			got = resp.PriceMatch
		}
		if !reflect.DeepEqual(venueIDs(got), recommend.IDs(want.List(intent))) {
			t.Errorf("%s = %v, want engine order %v", intent, venueIDs(got), recommend.IDs(want.List(intent)))
		}
		for i := range got {
			if got[i].Rank != i+1 {
				t.Errorf("%s[%d].Rank = %d", intent, i, got[i].Rank)
			}
		}
	}
}

func TestRecommend_CancelledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()

	gate := newGatedCatalog(exampleVenues()...)
	svc := newService(t, gate, nil)
	svc.SetArtifacts(trainSet(t, exampleVenues(), 1), nil)
	req := Request{VenueID: 1, N: 2, MaxDistanceKm: 15}

	ctx1, cancel1 := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, _, err := svc.Recommend(ctx1, req)
		first <- err
	}()

	select {
	case <-gate.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first caller never reached the catalog")
	}

	// The shared fetch is still blocked when the first caller gives up.
	cancel1()
	select {
	case err := <-first:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("cancelled caller error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	type outcome struct {
		resp *models.RecommendationsResponse
		err  error
	}
	second := make(chan outcome, 1)
	go func() {
		resp, _, err := svc.Recommend(context.Background(), req)
		second <- outcome{resp, err}
	}()

	close(gate.release)
	select {
	case got := <-second:
		if got.err != nil {
			t.Fatalf("second caller error = %v", got.err)
		}
		if !reflect.DeepEqual(venueIDs(got.resp.Similar), []int64{2}) {
			t.Errorf("similar = %v, want [2]", venueIDs(got.resp.Similar))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second caller did not return")
	}

	if err := gate.fetchErr(); err != nil {
		t.Errorf("shared fetch saw context error %v", err)
	}
}

func TestRecommend_DropsVenuesMissingFromCatalog(t *testing.T) {
	t.Parallel()

	// The model knows venue 2 but the catalog no longer has it.
	set := trainSet(t, exampleVenues(), 1)
	live := []models.Venue{exampleVenues()[0], exampleVenues()[2]}

	svc := newService(t, catalog.NewMemoryCatalog(live...), nil)
	svc.SetArtifacts(set, nil)

	resp, _, err := svc.Recommend(context.Background(), Request{VenueID: 1, N: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Similar) != 0 || resp.Similar == nil {
		t.Errorf("similar = %v, want empty non-nil list", resp.Similar)
	}
}

func TestRecommend_DegradedFallback(t *testing.T) {
	t.Parallel()

	svc := newService(t, catalog.NewMemoryCatalog(fallbackVenues()...), nil)

	tests := []struct {
		name          string
		n             int
		wantSimilar   []int64
		wantPriceBand []int64
	}{
		{"n=2", 2, []int64{2, 4}, []int64{2, 5}},
		{"n=3 tops up", 3, []int64{2, 4, 5}, []int64{2, 5, 4}},
		{"n=10", 10, []int64{2, 4, 5}, []int64{2, 5, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, cached, err := svc.Recommend(context.Background(), Request{VenueID: 1, N: tt.n})
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if !resp.Degraded || resp.ModelVersion != 0 || cached {
				t.Errorf("Degraded = %v, ModelVersion = %d, cached = %v", resp.Degraded, resp.ModelVersion, cached)
			}
			if got := venueIDs(resp.Similar); !reflect.DeepEqual(got, tt.wantSimilar) {
				t.Errorf("similar = %v, want %v", got, tt.wantSimilar)
			}
			if got := venueIDs(resp.SameLocation); !reflect.DeepEqual(got, tt.wantSimilar) {
				t.Errorf("same_location = %v, want %v", got, tt.wantSimilar)
			}
			if got := venueIDs(resp.PriceMatch); !reflect.DeepEqual(got, tt.wantPriceBand) {
				t.Errorf("price_match = %v, want %v", got, tt.wantPriceBand)
			}
		})
	}
}

func TestRecommend_DegradedWhenArtifactsInconsistent(t *testing.T) {
	t.Parallel()

	set := trainSet(t, exampleVenues(), 1)
	set.Index.Vectors = set.Index.Vectors[:1]

	svc := newService(t, catalog.NewMemoryCatalog(exampleVenues()...), nil)
	svc.SetArtifacts(set, nil)

	before := testutil.ToFloat64(metrics.RecommendationFallbacks)
	resp, _, err := svc.Recommend(context.Background(), Request{VenueID: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !resp.Degraded {
		t.Error("inconsistent artifacts should degrade")
	}
	if !reflect.DeepEqual(venueIDs(resp.Similar), []int64{2}) {
		t.Errorf("similar = %v, want [2]", venueIDs(resp.Similar))
	}
	if after := testutil.ToFloat64(metrics.RecommendationFallbacks); after < before+1 {
		t.Errorf("fallback not counted: %f -> %f", before, after)
	}
}

func TestRecommend_Cache(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore(time.Minute, 100)
	t.Cleanup(func() { _ = store.Close() })

	svc := newService(t, catalog.NewMemoryCatalog(exampleVenues()...), store)
	svc.SetArtifacts(trainSet(t, exampleVenues(), 1), nil)
	ctx := context.Background()

	first, cached, err := svc.Recommend(ctx, Request{VenueID: 1, N: 2})
	if err != nil || cached {
		t.Fatalf("first Recommend() cached = %v, err = %v", cached, err)
	}

	// Explicit defaults share the cache entry of the implicit ones.
	second, cached, err := svc.Recommend(ctx, Request{VenueID: 1, N: 2, MaxDistanceKm: 15})
	if err != nil || !cached {
		t.Fatalf("second Recommend() cached = %v, err = %v", cached, err)
	}
	if !reflect.DeepEqual(venueIDs(first.Similar), venueIDs(second.Similar)) || second.Similar[0].Name != "B" {
		t.Errorf("cached response differs: %+v vs %+v", first.Similar, second.Similar)
	}

	// A new model version misses.
	svc.SetArtifacts(trainSet(t, exampleVenues(), 2), nil)
	third, cached, err := svc.Recommend(ctx, Request{VenueID: 1, N: 2})
	if err != nil || cached {
		t.Fatalf("after swap cached = %v, err = %v", cached, err)
	}
	if third.ModelVersion != 2 {
		t.Errorf("ModelVersion = %d, want 2", third.ModelVersion)
	}
}

func TestRecommend_DegradedResponsesNotCached(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore(time.Minute, 100)
	t.Cleanup(func() { _ = store.Close() })

	svc := newService(t, catalog.NewMemoryCatalog(exampleVenues()...), store)
	for i := 0; i < 2; i++ {
		resp, cached, err := svc.Recommend(context.Background(), Request{VenueID: 1})
		if err != nil {
			t.Fatal(err)
		}
		if cached || !resp.Degraded {
			t.Errorf("call %d: cached = %v, degraded = %v", i, cached, resp.Degraded)
		}
	}
	if store.Stats().TotalKeys != 0 {
		t.Errorf("degraded response was cached: %d keys", store.Stats().TotalKeys)
	}
}

func TestModelInfo(t *testing.T) {
	t.Parallel()

	svc := newService(t, catalog.NewMemoryCatalog(), nil)
	if _, ok := svc.ModelInfo(); ok {
		t.Error("ModelInfo() ok with no model")
	}

	set := trainSet(t, exampleVenues(), 4)
	svc.SetArtifacts(set, nil)

	info, ok := svc.ModelInfo()
	if !ok {
		t.Fatal("ModelInfo() not ok after SetArtifacts")
	}
	if info.Version != 4 || info.VenueCount != 3 || info.CityCount != 2 || info.LocationWeight != 2 {
		t.Errorf("ModelInfo() = %+v", info)
	}
	if testutil.ToFloat64(metrics.ModelVersion) == 0 {
		t.Error("model version gauge not set")
	}

	svc.SetArtifacts(nil, nil)
	if svc.ModelVersion() != 0 || svc.Artifacts() != nil {
		t.Error("SetArtifacts(nil) did not clear the model")
	}
}

func TestPriceDrift(t *testing.T) {
	t.Parallel()

	cat := catalog.NewMemoryCatalog(exampleVenues()...)
	svc := newService(t, cat, nil)
	if _, err := svc.PriceDrift(context.Background()); !errors.Is(err, recommend.ErrModelUnavailable) {
		t.Errorf("PriceDrift() without model error = %v, want ErrModelUnavailable", err)
	}

	// Trained on A, B and C: veg mean 920/3, non-veg mean 1520/3.
	svc.SetArtifacts(trainSet(t, exampleVenues(), 1), nil)

	// Prices rise after training: venue 4 adds 1280 veg and 2480 non-veg,
	// lifting the means to 550 and 1000.
	if err := cat.Upsert(context.Background(), []models.Venue{
		{ID: 4, Name: "D", CityID: 10, Lat: 27.72, Lng: 85.32, VegPrice: models.Price(1280), NonVegPrice: models.Price(2480)},
	}); err != nil {
		t.Fatal(err)
	}

	d, err := svc.PriceDrift(context.Background())
	if err != nil {
		t.Fatalf("PriceDrift() error = %v", err)
	}
	const eps = 1e-9
	checks := []struct {
		name      string
		got, want float64
	}{
		{"model veg", d.ModelMeanVeg, 920.0 / 3},
		{"model non-veg", d.ModelMeanNonVeg, 1520.0 / 3},
		{"catalog veg", d.CatalogMeanVeg, 550},
		{"catalog non-veg", d.CatalogMeanNonVeg, 1000},
		{"veg change", d.VegChange, (550 - 920.0/3) / (920.0 / 3)},
		{"non-veg change", d.NonVegChange, (1000 - 1520.0/3) / (1520.0 / 3)},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > eps {
			t.Errorf("%s = %f, want %f", c.name, c.got, c.want)
		}
	}

	down := newService(t, downCatalog{cat}, nil)
	down.SetArtifacts(trainSet(t, exampleVenues(), 1), nil)
	if _, err := down.PriceDrift(context.Background()); !errors.Is(err, errCatalogDown) {
		t.Errorf("PriceDrift() with failing catalog error = %v, want errCatalogDown", err)
	}
}

func TestPriceBand(t *testing.T) {
	t.Parallel()

	target := models.Venue{ID: 1, VegPrice: models.Price(100), NonVegPrice: models.Price(200)}
	venues := []models.Venue{
		{ID: 2, VegPrice: models.Price(125), NonVegPrice: models.Price(200)}, // veg outside 20%
		{ID: 3, VegPrice: models.Price(81), NonVegPrice: models.Price(239)},  // both inside, near the edge
		{ID: 4},                                                              // no prices
		{ID: 5, VegPrice: models.Price(110), NonVegPrice: models.Price(190)},
	}

	if got := ids(priceBand(target, venues, 0.2, 10)); !reflect.DeepEqual(got, []int64{3, 5, 2, 4}) {
		t.Errorf("priceBand() = %v, want [3 5 2 4]", got)
	}
	if got := ids(priceBand(target, venues, 0.2, 1)); !reflect.DeepEqual(got, []int64{3}) {
		t.Errorf("priceBand(n=1) = %v, want [3]", got)
	}

	free := models.Venue{ID: 1}
	if got := ids(priceBand(free, venues, 0.2, 10)); !reflect.DeepEqual(got, []int64{4, 2, 3, 5}) {
		t.Errorf("priceBand(unpriced target) = %v, want [4 2 3 5]", got)
	}
}

func ids(venues []models.Venue) []int64 {
	out := make([]int64, len(venues))
	for i := range venues {
		out[i] = venues[i].ID
	}
	return out
}
