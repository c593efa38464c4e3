package repo_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"tubarchive/internal/database"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/models"
	"tubarchive/internal/repo"
)

const (
	chanA = "UCaaaaaaaaaaaaaaaaaaaaaa"
	chanB = "UCbbbbbbbbbbbbbbbbbbbbbb"
)

func newStore(t *testing.T) *repo.Store {
	t.Helper()
	d, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return repo.InitStores(d.DB)
}

func TestAddAndGetChannel(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	cs := s.ChannelStore()

	c := &models.Channel{ChannelID: chanA, Name: "Alpha", Category: "News", Depth: 10, Convert: true}
	id, err := cs.AddChannel(c)
	if err != nil {
		t.Fatalf("AddChannel: %v", err)
	}
	if id == 0 || c.ID != id {
		t.Fatalf("expected row ID to be set, got %d / %d", id, c.ID)
	}

	got, ok, err := cs.GetChannelModel(consts.QChanChannelID, chanA)
	if err != nil || !ok {
		t.Fatalf("GetChannelModel: ok=%v err=%v", ok, err)
	}
	if got.Name != "Alpha" || got.Category != "News" || got.Depth != 10 || !got.Convert || got.Paused {
		t.Errorf("unexpected channel: %+v", got)
	}
	if !got.LastScan.IsZero() {
		t.Errorf("new channel should have no last scan, got %v", got.LastScan)
	}

	if _, err := cs.AddChannel(&models.Channel{ChannelID: chanA}); !errors.Is(err, repo.ErrChannelExists) {
		t.Errorf("duplicate add: want ErrChannelExists, got %v", err)
	}
}

func TestAddChannelRejectsInvalidID(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	if _, err := s.ChannelStore().AddChannel(&models.Channel{ChannelID: "not a channel"}); err == nil {
		t.Fatal("expected invalid channel ID to be rejected")
	}
}

func TestGetChannelModelMissing(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	_, ok, err := s.ChannelStore().GetChannelModel(consts.QChanChannelID, chanB)
	if err != nil || ok {
		t.Fatalf("want not found without error, got ok=%v err=%v", ok, err)
	}
	if _, _, err := s.ChannelStore().GetChannelModel("password", "x"); err == nil {
		t.Fatal("expected unknown column key to be rejected")
	}
}

func TestDeleteChannelCascadesVideos(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	cs, vs := s.ChannelStore(), s.VideoStore()

	if _, err := cs.AddChannel(&models.Channel{ChannelID: chanA, Name: "Alpha"}); err != nil {
		t.Fatal(err)
	}
	if err := vs.UpsertVideo(&models.Video{VideoID: "vid1", ChannelID: chanA, Title: "One"}); err != nil {
		t.Fatal(err)
	}

	if err := cs.DeleteChannel(consts.QChanName, "Alpha"); err != nil {
		t.Fatalf("DeleteChannel: %v", err)
	}
	if _, ok, _ := vs.GetVideo("vid1"); ok {
		t.Error("video row should be removed with its channel")
	}
	if err := cs.DeleteChannel(consts.QChanName, "Alpha"); err == nil {
		t.Error("deleting a missing channel should fail")
	}
}

func TestUpdateLastScanAndValue(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	cs := s.ChannelStore()

	if _, err := cs.AddChannel(&models.Channel{ChannelID: chanA, Name: "Alpha"}); err != nil {
		t.Fatal(err)
	}
	if err := cs.UpdateLastScan(chanA); err != nil {
		t.Fatalf("UpdateLastScan: %v", err)
	}
	if err := cs.UpdateLastScan(chanB); err == nil {
		t.Error("UpdateLastScan on unknown channel should fail")
	}
	if err := cs.UpdateChannelValue(consts.QChanChannelID, chanA, consts.QChanPaused, true); err != nil {
		t.Fatalf("UpdateChannelValue: %v", err)
	}
	if err := cs.UpdateChannelValue(consts.QChanChannelID, chanA, consts.QChanCreatedAt, time.Now()); err == nil {
		t.Error("created_at should not be updatable")
	}

	got, _, err := cs.GetChannelModel(consts.QChanChannelID, chanA)
	if err != nil {
		t.Fatal(err)
	}
	if got.LastScan.IsZero() {
		t.Error("last scan not recorded")
	}
	if !got.Paused {
		t.Error("paused not recorded")
	}
}

func TestChannelsFromTree(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"Solo": "` + chanA + `",
		"News": {"Beta": "` + chanB + `", "Local": {"Handle": "@localnews"}},
		"Broken": 5
	}`)
	channels, err := repo.ChannelsFromTree(data, models.Channel{Depth: 5})
	if err == nil || !strings.Contains(err.Error(), "Broken") {
		t.Fatalf("expected error naming the bad entry, got %v", err)
	}

	want := map[string]string{
		"Beta":   "News",
		"Handle": "News/Local",
		"Solo":   "",
	}
	if len(channels) != len(want) {
		t.Fatalf("got %d channels, want %d", len(channels), len(want))
	}
	for _, c := range channels {
		cat, ok := want[c.Name]
		if !ok {
			t.Errorf("unexpected channel %q", c.Name)
			continue
		}
		if c.Category != cat {
			t.Errorf("%s: category %q, want %q", c.Name, c.Category, cat)
		}
		if c.Depth != 5 {
			t.Errorf("%s: template depth not applied", c.Name)
		}
	}
}

func TestImportChannelsSkipsExisting(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	cs := s.ChannelStore()

	if _, err := cs.AddChannel(&models.Channel{ChannelID: chanA, Name: "Alpha"}); err != nil {
		t.Fatal(err)
	}
	added, err := cs.ImportChannels([]*models.Channel{
		{ChannelID: chanA, Name: "Alpha"},
		{ChannelID: chanB, Name: "Beta"},
	})
	if err != nil {
		t.Fatalf("ImportChannels: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}

	all, hasRows, err := cs.GetAllChannels()
	if err != nil || !hasRows || len(all) != 2 {
		t.Fatalf("GetAllChannels: %d rows, hasRows=%v, err=%v", len(all), hasRows, err)
	}
}

func TestVideoUpsertKeepsState(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	vs := s.VideoStore()

	if _, err := s.ChannelStore().AddChannel(&models.Channel{ChannelID: chanA}); err != nil {
		t.Fatal(err)
	}

	views := int64(42)
	published := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	v := &models.Video{
		VideoID:         "vid1",
		ChannelID:       chanA,
		Title:           "First",
		PublishedAt:     published,
		DurationSeconds: 120,
		Stats:           models.Stats{Views: &views},
	}
	if err := vs.UpsertVideo(v); err != nil {
		t.Fatalf("UpsertVideo: %v", err)
	}
	if err := vs.SetVideoState("vid1", models.ItemState{Downloaded: true, Converted: true}); err != nil {
		t.Fatalf("SetVideoState: %v", err)
	}

	v.Title = "Renamed"
	if err := vs.UpsertVideo(v); err != nil {
		t.Fatalf("second UpsertVideo: %v", err)
	}

	got, ok, err := vs.GetVideo("vid1")
	if err != nil || !ok {
		t.Fatalf("GetVideo: ok=%v err=%v", ok, err)
	}
	if got.Title != "Renamed" {
		t.Errorf("title = %q, want refreshed title", got.Title)
	}
	if !got.Downloaded || !got.Converted {
		t.Errorf("upsert must not reset state: %+v", got)
	}
	if !got.PublishedAt.Equal(published) {
		t.Errorf("published = %v, want %v", got.PublishedAt, published)
	}
	if got.Stats.Views == nil || *got.Stats.Views != 42 {
		t.Errorf("views not round-tripped: %v", got.Stats.Views)
	}
	if got.Stats.Likes != nil {
		t.Errorf("unknown likes should stay nil, got %d", *got.Stats.Likes)
	}

	if err := vs.SetVideoState("missing", models.ItemState{}); err == nil {
		t.Error("SetVideoState on missing video should fail")
	}
}

func TestGetChannelVideosNewestFirst(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	vs := s.VideoStore()

	if _, err := s.ChannelStore().AddChannel(&models.Channel{ChannelID: chanA}); err != nil {
		t.Fatal(err)
	}
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := vs.UpsertVideo(&models.Video{
			VideoID:     id,
			ChannelID:   chanA,
			PublishedAt: base.AddDate(0, i, 0),
		}); err != nil {
			t.Fatal(err)
		}
	}

	videos, err := vs.GetChannelVideos(chanA)
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, v := range videos {
		order = append(order, v.VideoID)
	}
	if strings.Join(order, ",") != "new,mid,old" {
		t.Errorf("order = %v", order)
	}
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	rs := s.RunStore()

	run, err := rs.StartRun(time.Now())
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if run.RunID == "" {
		t.Fatal("run ID not assigned")
	}

	run.Channels, run.Listed, run.Transferred, run.Muxed, run.Failed = 2, 10, 3, 2, 1
	run.Error = "one failure"
	if err := rs.FinishRun(run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := rs.LatestRuns(5)
	if err != nil || len(runs) != 1 {
		t.Fatalf("LatestRuns: %d runs, err=%v", len(runs), err)
	}
	got := runs[0]
	if got.RunID != run.RunID || got.Listed != 10 || got.Failed != 1 || got.FinishedAt.IsZero() {
		t.Errorf("unexpected run: %+v", got)
	}
}

func TestResolveChannelID(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	cs := s.ChannelStore()

	if _, err := cs.AddChannel(&models.Channel{ChannelID: "@handle", Category: "News"}); err != nil {
		t.Fatal(err)
	}
	if err := cs.ResolveChannelID("@handle", "@other"); err == nil {
		t.Error("resolving to another handle should fail")
	}
	if err := cs.ResolveChannelID("@handle", chanA); err != nil {
		t.Fatalf("ResolveChannelID: %v", err)
	}

	c, ok, err := cs.GetChannelModel(consts.QChanChannelID, chanA)
	if err != nil || !ok {
		t.Fatalf("resolved channel missing: ok=%v err=%v", ok, err)
	}
	if c.Category != "News" {
		t.Errorf("settings lost on resolve: %+v", c)
	}
	if err := s.VideoStore().UpsertVideo(&models.Video{VideoID: "v1", ChannelID: chanA}); err != nil {
		t.Errorf("video for resolved channel: %v", err)
	}
	if err := cs.ResolveChannelID("@handle", chanA); err == nil {
		t.Error("resolving a missing handle should fail")
	}
}

func TestResolveChannelIDDropsDuplicate(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	cs := s.ChannelStore()

	for _, id := range []string{chanB, "@dupe"} {
		if _, err := cs.AddChannel(&models.Channel{ChannelID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := cs.ResolveChannelID("@dupe", chanB); err != nil {
		t.Fatalf("ResolveChannelID: %v", err)
	}
	all, _, err := cs.GetAllChannels()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].ChannelID != chanB {
		t.Errorf("expected only %s, got %+v", chanB, all)
	}
}
