package main

import (
	"fmt"
	"log"
	"time"

	"github.com/yiblet/clipsync/internal/clips"
	"github.com/yiblet/clipsync/internal/codec"
	"github.com/yiblet/clipsync/internal/merge"
	"github.com/yiblet/clipsync/internal/notify"
	"github.com/yiblet/clipsync/internal/store"
	"github.com/yiblet/clipsync/internal/store/memstore"
)

func main() {
	fmt.Println("clipsync Demo")

	bus := notify.NewBus(nil)
	bus.Subscribe(func(e store.Event) {
		if e.Entity == store.EntityClipItem && e.Change == store.ChangeDeleted {
			fmt.Printf("   evicted: %v\n", e.Texts)
		}
	})

	// Small in-memory store so eviction shows up quickly
	st := memstore.NewMemoryStore(memstore.WithMaxItems(3), memstore.WithNotifier(bus))
	defer st.Close()
	m := clips.NewManager(st, clips.WithDevice("demo"))

	testContent := []string{
		"Hello, World! This is the first clip.",
		"package main\n\nimport \"fmt\"\n\nfunc main() {\n    fmt.Println(\"Hello, Go!\")\n}",
		"SELECT * FROM users WHERE created_at > '2023-01-01' ORDER BY created_at DESC LIMIT 10;",
		"#!/bin/bash\necho \"Starting script...\"",
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
	}

	fmt.Println("\nCopying clips (limit 3, first one marked favorite):")
	for i, content := range testContent {
		item, err := m.Copy(content)
		if err != nil {
			log.Fatalf("Failed to copy item %d: %v", i, err)
		}
		fmt.Printf("%d. %s\n", i+1, clips.Preview(item.Text))
		if i == 0 {
			if _, err := m.SetFavorite(0, true); err != nil {
				log.Fatalf("Failed to mark favorite: %v", err)
			}
		}
	}
	printHistory(m)

	// A snapshot from another device sharing one clip and one label name
	remote := &store.Snapshot{
		Labels: []store.Label{{ID: 1, Name: "sql"}},
		ClipItems: []store.ClipItem{
			{Text: testContent[2], Date: time.Now().Add(time.Hour), Device: "phone", Remote: true, LabelIDs: []uint{1}},
			{Text: "Shopping list: milk, eggs", Date: time.Now().Add(-time.Hour), Device: "phone", Remote: true},
		},
	}

	local, err := st.Export()
	if err != nil {
		log.Fatalf("Failed to export: %v", err)
	}
	merged := merge.Merge(local, remote)
	fmt.Printf("\nMerged %d local + %d remote clips into %d\n",
		len(local.ClipItems), len(remote.ClipItems), len(merged.ClipItems))

	raw, err := codec.EncodeSnapshot(merged)
	if err != nil {
		log.Fatalf("Failed to encode: %v", err)
	}
	z, err := codec.NewZstd()
	if err != nil {
		log.Fatalf("Failed to create codec: %v", err)
	}
	defer z.Close()
	compressed, err := z.Compress(raw)
	if err != nil {
		log.Fatalf("Failed to compress: %v", err)
	}
	fmt.Printf("Backup payload: %d bytes JSON, %d bytes compressed\n", len(raw), len(compressed))

	unlimited := memstore.NewMemoryStore()
	if err := unlimited.Replace(merged); err != nil {
		log.Fatalf("Failed to replace: %v", err)
	}
	printHistory(clips.NewManager(unlimited))

	fmt.Printf("\nDemo complete! (Using in-memory store)\n")
}

func printHistory(m *clips.Manager) {
	items, err := m.List(store.ListOptions{})
	if err != nil {
		log.Fatalf("Failed to list items: %v", err)
	}

	fmt.Println("\nHistory (newest first):")
	for i, item := range items {
		mark := " "
		if item.Favorite {
			mark = "*"
		}
		var labels string
		for _, l := range item.Labels {
			labels += " #" + l.Name
		}
		fmt.Printf("%d.%s [%s %s] %s%s\n", i, mark, item.Date.Format("15:04:05"), item.Device, clips.Preview(item.Text), labels)
	}
}
