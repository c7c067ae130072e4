package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/vitaminmoo/gattx/internal/config"
	"github.com/vitaminmoo/gattx/internal/explore"
	"github.com/vitaminmoo/gattx/internal/store"
	"github.com/vitaminmoo/gattx/internal/util"
)

// saveSnapshot imports an explored topology and reports the hash.
func saveSnapshot(st *store.Store, topo *explore.Topology, p Printer) error {
	hash, isNew, err := st.Import(topo, store.Source{
		Session: topo.Session,
		Address: topo.Peripheral.Address,
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	config.Log.WithField("hash", hash).WithField("new", isNew).Info("snapshot saved")
	if p.JSON {
		return nil
	}
	if isNew {
		p.println(fmt.Sprintf("Saved new snapshot %s", store.ShortHash(hash)))
		return nil
	}
	meta, err := st.GetMetadata(hash)
	if err != nil {
		return err
	}
	p.println(fmt.Sprintf("Updated snapshot %s (%d walks)", store.ShortHash(hash), len(meta.Sources)))
	return nil
}

// SnapshotList prints every saved layout.
func SnapshotList(st *store.Store, p Printer) error {
	entries, err := st.List()
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if p.JSON {
		return p.PrintJSON(entries)
	}
	if len(entries) == 0 {
		p.println(fmt.Sprintf("No snapshots in %s.", st.Path()))
		return nil
	}

	t := newTable("Hash", "Address", "Name", "Services", "Characteristics", "Walks", "Updated")
	for _, e := range entries {
		t.Row(
			store.ShortHash(e.Hash),
			util.FormatMAC(e.Address),
			util.Truncate(e.Name, 24),
			strconv.Itoa(e.Services),
			strconv.Itoa(e.Characteristics),
			strconv.Itoa(e.Walks),
			humanize.Time(e.UpdatedAt),
		)
	}
	p.println(t.String())
	return nil
}

// snapshotDetail is the JSON form of SnapshotShow.
type snapshotDetail struct {
	Metadata *store.Metadata   `json:"metadata"`
	Topology *explore.Topology `json:"topology"`
}

// SnapshotShow prints one saved layout, by hash or hash prefix.
func SnapshotShow(st *store.Store, hash string, p Printer) error {
	full, err := st.Resolve(hash)
	if err != nil {
		return err
	}
	meta, err := st.GetMetadata(full)
	if err != nil {
		return err
	}
	topo, err := st.Get(full)
	if err != nil {
		return err
	}
	if p.JSON {
		return p.PrintJSON(snapshotDetail{Metadata: meta, Topology: topo})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render("Snapshot"), meta.ContentHash)
	fmt.Fprintf(&b, "%s %d services, %d characteristics, %d descriptors\n",
		mutedStyle.Render("Layout:"), meta.Services, meta.Characteristics, meta.Descriptors)
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("First saved:"), humanize.Time(meta.CreatedAt))
	for _, src := range meta.Sources {
		fmt.Fprintf(&b, "  %s  %s  %s\n", src.Timestamp.Format("2006-01-02 15:04:05"), util.FormatMAC(src.Address), mutedStyle.Render(src.Session))
	}
	p.println(b.String())
	p.println(TopologyText(topo))
	return nil
}
