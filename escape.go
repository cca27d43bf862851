// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

// appendEscapedLiteral wraps s in single quotes with SQL escaping applied
// (§4.2 Encoding rules). When noBackslashEscapes is false (the common
// case), backslash, the quote characters, NUL, CR, LF and ctrl-Z are
// backslash-escaped. When the server has NO_BACKSLASH_ESCAPES set, only the
// single quote is escaped, by doubling it.
func appendEscapedLiteral(dst []byte, s string, noBackslashEscapes bool) []byte {
	dst = append(dst, '\'')
	if noBackslashEscapes {
		for i := 0; i < len(s); i++ {
			c := s[i]
			if c == '\'' {
				dst = append(dst, '\'', '\'')
				continue
			}
			dst = append(dst, c)
		}
		dst = append(dst, '\'')
		return dst
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\'', '"', '\\', 0, '\r', '\n', '\x1a':
			dst = append(dst, '\\', escapeReplacement(c))
		default:
			dst = append(dst, c)
		}
	}
	dst = append(dst, '\'')
	return dst
}

func escapeReplacement(c byte) byte {
	switch c {
	case 0:
		return '0'
	case '\r':
		return 'r'
	case '\n':
		return 'n'
	case '\x1a':
		return 'Z'
	default:
		return c
	}
}
