// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/tenex-chat/tenex/lib/config"
	"github.com/tenex-chat/tenex/lib/keys"
)

// storeKey interactively stores a signing key in preferences. An
// empty password stores the key bare; otherwise it is wrapped as an
// ncryptsec blob and the plaintext never touches disk.
func storeKey(prefs *config.PreferencesStore) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("--store-key needs an interactive terminal")
	}

	fmt.Fprint(os.Stderr, "secret key (hex or nsec): ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}
	key, err := keys.ParseSecret(string(raw))
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stderr, "password (empty to store unencrypted): ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	credential := key.Hex()
	if len(password) > 0 {
		fmt.Fprint(os.Stderr, "confirm password: ")
		confirm, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		if string(password) != string(confirm) {
			return fmt.Errorf("passwords do not match")
		}
		credential, err = keys.Encrypt(key, string(password), keys.DefaultLogN)
		if err != nil {
			return err
		}
	}

	if err := prefs.StoreCredentials(credential); err != nil {
		return err
	}
	if keys.IsEncrypted(credential) {
		fmt.Fprintln(os.Stderr, "stored encrypted credentials")
	} else {
		fmt.Fprintln(os.Stderr, "stored plaintext credentials")
	}
	return nil
}
