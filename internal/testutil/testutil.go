// Package testutil provides shared test helpers for setting up document corpora.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/graphblog/internal/storage"
)

// Corpus writes files (slash-separated relative path -> content) into a
// temporary directory and returns it with a storage.FS for ".md" documents.
func Corpus(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	store, err := storage.NewFS(root, ".md")
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// WriteFile creates or replaces one corpus file, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Doc returns a complete document with every metadata key present.
func Doc(id, title, body string) string {
	return DocWith(id, title, "note", false, body)
}

// DocWith is Doc with an explicit tag and draft flag.
func DocWith(id, title, tag string, draft bool, body string) string {
	return fmt.Sprintf(`+++
title = %q
id = %q
author = "Ada"
description = "About %s"
date = 2024-03-01
tag = %q
image = "/assets/%s.png"
icon = "/assets/icon.svg"
draft = %t
+++
%s`, title, id, title, tag, id, draft, body)
}
