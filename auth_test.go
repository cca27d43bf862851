// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"testing"
)

func TestScrambleOldPass(t *testing.T) {
	scramble := []byte{9, 8, 7, 6, 5, 4, 3, 2}
	vectors := []struct {
		pass string
		out  string
	}{
		{" pass", "47575c5a435b4251"},
		{"pass ", "47575c5a435b4251"},
		{"123\t456", "575c47505b5b5559"},
		{"C0mpl!ca ted#PASS123", "5d5d554849584a45"},
	}
	for _, tuple := range vectors {
		ours := scrambleOldPassword(scramble, tuple.pass)
		if tuple.out != fmt.Sprintf("%x", ours) {
			t.Errorf("failed old password %q: got %x", tuple.pass, ours)
		}
	}
}

func TestScrambleSHA256Pass(t *testing.T) {
	scramble := []byte{10, 47, 74, 111, 75, 73, 34, 48, 88, 76, 114, 74, 37, 13, 3, 80, 82, 2, 23, 21}
	vectors := []struct {
		pass string
		out  string
	}{
		{"secret", "f490e76f66d9d86665ce54d98c78d0acfe2fb0b08b423da807144873d30b312c"},
		{"secret2", "abc3934a012cf342e876071c8ee202de51785b430258a7a0138bc79c4d800bc6"},
	}
	for _, tuple := range vectors {
		ours := scrambleSHA256Password(scramble, tuple.pass)
		if tuple.out != fmt.Sprintf("%x", ours) {
			t.Errorf("failed SHA256 password %q: got %x", tuple.pass, ours)
		}
	}
}

func TestNativePasswordPlugin(t *testing.T) {
	p := &nativePasswordPlugin{}
	seed := []byte{96, 71, 63, 8, 1, 58, 75, 12, 69, 95, 66, 60, 117, 31, 48, 31, 89, 39, 55, 31}

	if _, err := p.Next(nil, seed, nil, &Config{AllowNativePasswords: false, Passwd: "secret"}); err != ErrNativePassword {
		t.Errorf("expected ErrNativePassword, got %v", err)
	}

	out, err := p.Next(nil, seed, nil, &Config{AllowNativePasswords: true, Passwd: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	expected := []byte{202, 41, 195, 164, 34, 226, 49, 103, 21, 211, 167, 199, 227, 116, 8, 48, 57, 71, 149, 146}
	if !bytes.Equal(out, expected) {
		t.Errorf("got unexpected scramble: %v", out)
	}

	out, err = p.Next(nil, seed, nil, &Config{AllowNativePasswords: true, Passwd: ""})
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Errorf("expected nil for empty password, got %v", out)
	}
}

func TestClearPasswordPlugin(t *testing.T) {
	p := &clearPasswordPlugin{}

	if _, err := p.Next(nil, nil, nil, &Config{AllowCleartextPasswords: false, Passwd: "secret"}); err != ErrCleartextPassword {
		t.Errorf("expected ErrCleartextPassword, got %v", err)
	}

	out, err := p.Next(nil, nil, nil, &Config{AllowCleartextPasswords: true, Passwd: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte("secret\x00")) {
		t.Errorf("got unexpected data: %v", out)
	}

	out, err = p.Next(nil, nil, nil, &Config{AllowCleartextPasswords: true, Passwd: ""})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{0}) {
		t.Errorf("got unexpected data: %v", out)
	}
}

func TestOldPasswordPlugin(t *testing.T) {
	p := &oldPasswordPlugin{}
	seed := []byte{95, 84, 103, 43, 61, 49, 123, 61, 91, 50, 40, 113, 35, 84, 96, 101, 92, 123, 121, 107}

	if _, err := p.Next(nil, seed, nil, &Config{AllowOldPasswords: false, Passwd: "secret"}); err != ErrOldPassword {
		t.Errorf("expected ErrOldPassword, got %v", err)
	}

	out, err := p.Next(nil, seed, nil, &Config{AllowOldPasswords: true, Passwd: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{86, 83, 83, 79, 74, 78, 65, 66, 0}) {
		t.Errorf("got unexpected data: %v", out)
	}

	out, err = p.Next(nil, seed, nil, &Config{AllowOldPasswords: true, Passwd: ""})
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Errorf("expected nil for empty password, got %v", out)
	}
}

func TestCachingSHA2PluginCached(t *testing.T) {
	p := &cachingSHA2Plugin{}
	seed := []byte{90, 105, 74, 126, 30, 48, 37, 56, 3, 23, 115, 127, 69, 22, 41, 84, 32, 123, 43, 118}
	cfg := &Config{Passwd: "secret"}

	out, err := p.Next(nil, seed, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	expected := []byte{102, 32, 5, 35, 143, 161, 140, 241, 171, 232, 56, 139, 43,
		14, 107, 196, 249, 170, 147, 60, 220, 204, 120, 178, 214, 15, 184, 150,
		26, 61, 57, 235}
	if !bytes.Equal(out, expected) {
		t.Fatalf("unexpected scramble: %v", out)
	}

	// server reports the verifier was cached; nothing more to send.
	out, err = p.Next(nil, seed, []byte{3}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Errorf("expected nil on fast-auth success, got %v", out)
	}
}

func TestCachingSHA2PluginFullAuthSecure(t *testing.T) {
	p := &cachingSHA2Plugin{}
	seed := []byte{6, 81, 96, 114, 14, 42, 50, 30, 76, 47, 1, 95, 126, 81, 62, 94, 83, 80, 52, 85}
	cfg := &Config{Passwd: "secret", TLS: &tls.Config{InsecureSkipVerify: true}}

	out, err := p.Next(nil, seed, []byte{4}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte("secret\x00")) {
		t.Errorf("got unexpected cleartext fallback: %v", out)
	}
}

func TestCachingSHA2PluginFullAuthRequestsPubKey(t *testing.T) {
	p := &cachingSHA2Plugin{}
	seed := []byte{6, 81, 96, 114, 14, 42, 50, 30, 76, 47, 1, 95, 126, 81, 62, 94, 83, 80, 52, 85}
	cfg := &Config{Passwd: "secret"}

	out, err := p.Next(nil, seed, []byte{4}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{2}) {
		t.Errorf("expected a public-key request, got %v", out)
	}
}

func TestParsePEMPublicKeyRejectsGarbage(t *testing.T) {
	if _, err := parsePEMPublicKey([]byte("not pem")); err == nil {
		t.Error("expected an error decoding non-PEM data")
	}
}

func TestDialogPluginNotAllowed(t *testing.T) {
	p := &dialogPlugin{}
	if _, err := p.Next(nil, nil, nil, &Config{AllowDialogPasswords: false, Passwd: "secret"}); err != ErrDialogAuth {
		t.Errorf("expected ErrDialogAuth, got %v", err)
	}
}

func TestDialogPluginPrompts(t *testing.T) {
	p := &dialogPlugin{}
	cfg := &Config{AllowDialogPasswords: true, Passwd: "secret", OtherPasswd: "otp-code"}

	out, err := p.Next(nil, nil, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte("secret\x00")) {
		t.Errorf("got unexpected first prompt response: %v", out)
	}

	out, err = p.Next(nil, nil, []byte("Password:"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte("otp-code\x00")) {
		t.Errorf("got unexpected follow-up prompt response: %v", out)
	}
}

func TestPluginRegistryLookup(t *testing.T) {
	reg := NewPluginRegistry()
	for _, name := range []string{
		"mysql_native_password", "mysql_clear_password", "caching_sha2_password",
		"client_ed25519", "sha256_password", "mysql_old_password", "dialog",
	} {
		if _, ok := reg.GetPlugin(name); !ok {
			t.Errorf("expected plugin %q to be registered", name)
		}
	}
	if _, err := reg.MustGetPlugin("does_not_exist"); err == nil {
		t.Error("expected an error for an unknown plugin name")
	}
}
