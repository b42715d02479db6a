// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Mkgroups builds and tears down group fixtures for the probe. It
// edits a colon-format group file, never the system security store,
// and only ever creates or removes entries carrying the ztest_
// prefix. Entries without the prefix pass through untouched, so a
// stray cleanup cannot damage real groups.
package main
