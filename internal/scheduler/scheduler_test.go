package scheduler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dxip_harvester/internal/config"
	"dxip_harvester/internal/logger"
	"dxip_harvester/internal/store"
)

func TestMain(m *testing.M) {
	logger.Setup(false, "")
	os.Exit(m.Run())
}

const schedulerPage = `<table>
<thead><tr><th>线路</th><th>优选地址</th><th>下载速度</th></tr></thead>
<tbody><tr><td>电信</td><td>1.2.3.4</td><td>10 MB/s</td></tr></tbody>
</table>`

func TestStartRunsPeriodicHarvest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(schedulerPage))
	}))
	defer server.Close()

	s := store.NewFileRecordStore(filepath.Join(t.TempDir(), "dx.txt"), "Cloudflare")
	cfg := config.DefaultConfig()
	cfg.Source.URL = server.URL
	cfg.Task.PeriodicHarvest = "@every 100ms"

	Start(cfg, s)

	deadline := time.Now().Add(3 * time.Second)
	for {
		if n, _ := s.Len(); n == 1 {
			break
		}
		if time.Now().After(deadline) {
			n, _ := s.Len()
			t.Fatalf("Len() = %d, want 1 after periodic harvest", n)
		}
		time.Sleep(20 * time.Millisecond)
	}

	records, err := s.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if records[0].Address != "1.2.3.4" {
		t.Errorf("Address = %q, want 1.2.3.4", records[0].Address)
	}
}

func TestStartWithoutSpecDoesNothing(t *testing.T) {
	s := store.NewFileRecordStore(filepath.Join(t.TempDir(), "dx.txt"), "Cloudflare")
	cfg := config.DefaultConfig()

	Start(cfg, s)

	time.Sleep(150 * time.Millisecond)
	if n, _ := s.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
}
