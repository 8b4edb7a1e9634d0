// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package id

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-uuid"
)

// New generates a random ID with an optional prefix. The ID is a version 4
// UUID in its canonical lower case form.
func New(optionalPrefix string) (string, error) {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "", fmt.Errorf("unable to generate id: %w", err)
	}
	switch {
	case optionalPrefix != "":
		return fmt.Sprintf("%s_%s", optionalPrefix, id), nil
	default:
		return id, nil
	}
}

// Valid returns true when v has the form of an ID generated by New with the
// given prefix.
func Valid(prefix, v string) bool {
	if prefix != "" {
		var ok bool
		if v, ok = strings.CutPrefix(v, prefix+"_"); !ok {
			return false
		}
	}
	if v != strings.ToLower(v) {
		return false
	}
	_, err := uuid.ParseUUID(v)
	return err == nil
}
