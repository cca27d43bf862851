// Go MySQL Driver - A MySQL-Driver for Go's database/sql package
//
// Copyright 2023 The Go-MySQL-Driver Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysql

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// temporalCodec handles DATE, NEWDATE, DATETIME, TIMESTAMP (decoded as
// time.Time) and TIME (decoded as time.Duration, since MySQL TIME is an
// offset that can exceed 24 hours and carry a sign, not a calendar time of
// day) (§4.2).
type temporalCodec struct{}

func (temporalCodec) Name() string { return "temporal" }

func isDateLikeColumn(t ColumnType) bool {
	switch t {
	case TypeDate, TypeNewDate, TypeDateTime, TypeTimestamp:
		return true
	}
	return false
}

func (temporalCodec) CanDecode(col ColumnDefinition, host HostKind) bool {
	switch host {
	case HostAny:
		return isDateLikeColumn(col.Type) || col.Type == TypeTime
	case HostTime:
		return isDateLikeColumn(col.Type)
	case HostDuration:
		return col.Type == TypeTime
	}
	return false
}

func (temporalCodec) CanEncode(host HostKind) bool {
	return host == HostTime || host == HostDuration
}

// DecodeBinary decodes the Protocol::MYSQL_TYPE_DATE/DATETIME/TIMESTAMP
// binary layout: a length byte (0, 4, 7 or 11) followed by that many
// fields, trailing fields defaulting to zero (§4.2). An all-zero date
// decodes to nil (SQL NULL), matching "zero-date -> null".
func (temporalCodec) DecodeBinary(data []byte, col ColumnDefinition, _ *Context) (any, int, error) {
	if col.Type == TypeTime {
		return decodeBinaryDuration(data)
	}
	if len(data) < 1 {
		return nil, 0, fmt.Errorf("%w: short temporal field", errMalformedPacket)
	}
	n := int(data[0])
	if len(data) < 1+n {
		return nil, 0, fmt.Errorf("%w: truncated temporal field", errMalformedPacket)
	}
	body := data[1 : 1+n]
	consumed := 1 + n

	var year int
	var month, day, hour, minute, second int
	var micro int
	if n >= 4 {
		year = int(binary.LittleEndian.Uint16(body[0:2]))
		month = int(body[2])
		day = int(body[3])
	}
	if n >= 7 {
		hour = int(body[4])
		minute = int(body[5])
		second = int(body[6])
	}
	if n >= 11 {
		micro = int(binary.LittleEndian.Uint32(body[7:11]))
	}

	if year == 0 && month == 0 && day == 0 {
		return nil, consumed, nil
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, micro*1000, time.UTC), consumed, nil
}

// decodeBinaryDuration decodes the Protocol::MYSQL_TYPE_TIME binary layout:
// length byte (0, 8 or 12), sign byte, 4-byte day count, H/M/S, optional
// 4-byte microseconds (§4.2).
func decodeBinaryDuration(data []byte) (any, int, error) {
	if len(data) < 1 {
		return nil, 0, fmt.Errorf("%w: short TIME field", errMalformedPacket)
	}
	n := int(data[0])
	if n == 0 {
		return time.Duration(0), 1, nil
	}
	if len(data) < 1+n {
		return nil, 0, fmt.Errorf("%w: truncated TIME field", errMalformedPacket)
	}
	body := data[1 : 1+n]
	consumed := 1 + n

	negative := body[0] != 0
	days := binary.LittleEndian.Uint32(body[1:5])
	hour := int(body[5])
	minute := int(body[6])
	second := int(body[7])
	var micro int
	if n >= 12 {
		micro = int(binary.LittleEndian.Uint32(body[8:12]))
	}

	total := time.Duration(days)*24*time.Hour +
		time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second +
		time.Duration(micro)*time.Microsecond
	if negative {
		total = -total
	}
	return total, consumed, nil
}

// temporalParts is the tokenized result of the shared text parsing routine
// (§4.2 "Temporal text parsing").
type temporalParts struct {
	negative               bool
	year, month, day       int
	hour, minute, second   int
	microsecond            int
	allZero                bool
}

// parseTemporalText tokenizes on '-', ' ', ':', '.' and fills whichever
// fields are present; trailing fractional digits are right-padded to
// microsecond precision.
func parseTemporalText(s string) (temporalParts, error) {
	var p temporalParts
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	p.negative = neg

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == ' ' || r == ':' || r == '.'
	})
	nums := make([]int, len(fields))
	fracIdx := -1
	if strings.Contains(s, ".") {
		fracIdx = len(fields) - 1
	}
	for i, f := range fields {
		if i == fracIdx {
			padded := (f + "000000")[:6]
			n, err := strconv.Atoi(padded)
			if err != nil {
				return p, fmt.Errorf("mysql: invalid temporal fraction %q: %w", f, err)
			}
			nums[i] = n
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return p, fmt.Errorf("mysql: invalid temporal field %q: %w", f, err)
		}
		nums[i] = n
	}

	switch {
	case len(nums) >= 6:
		p.year, p.month, p.day = nums[0], nums[1], nums[2]
		p.hour, p.minute, p.second = nums[3], nums[4], nums[5]
	case len(nums) >= 3 && fracIdx < 0:
		// ambiguous between date-only and H:M:S; callers disambiguate via
		// column type, so just fill positionally here.
		p.year, p.month, p.day = nums[0], nums[1], nums[2]
	}
	if fracIdx >= 0 {
		p.microsecond = nums[fracIdx]
	}

	p.allZero = p.year == 0 && p.month == 0 && p.day == 0 &&
		p.hour == 0 && p.minute == 0 && p.second == 0 && p.microsecond == 0
	return p, nil
}

func (temporalCodec) DecodeText(data []byte, col ColumnDefinition, _ *Context) (any, error) {
	s := string(data)
	if col.Type == TypeTime {
		return parseTimeText(s)
	}

	p, err := parseTemporalText(s)
	if err != nil {
		return nil, fmt.Errorf("mysql: decoding temporal column %q: %w", col.Name, err)
	}
	if p.allZero {
		return nil, nil
	}
	year, month, day := p.year, p.month, p.day
	if year == 0 && month == 0 && day == 0 {
		// zero Y/M/D with a non-zero time component: epoch with time.
		year, month, day = 1970, 1, 1
	}
	return time.Date(year, time.Month(month), day, p.hour, p.minute, p.second, p.microsecond*1000, time.UTC), nil
}

// parseTimeText parses MySQL's TIME text form "[-]HHH:MM:SS[.ffffff]",
// where the hour component is unbounded (it encodes day count * 24 + hour)
// and is kept whole in the returned duration, not reduced mod 24.
func parseTimeText(s string) (time.Duration, error) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var fracPart string
	if i := strings.IndexByte(s, '.'); i >= 0 {
		fracPart = s[i+1:]
		s = s[:i]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("mysql: invalid TIME literal %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("mysql: invalid TIME literal %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("mysql: invalid TIME literal %q: %w", s, err)
	}
	second, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("mysql: invalid TIME literal %q: %w", s, err)
	}
	micro := 0
	if fracPart != "" {
		padded := (fracPart + "000000")[:6]
		micro, err = strconv.Atoi(padded)
		if err != nil {
			return 0, fmt.Errorf("mysql: invalid TIME fraction %q: %w", fracPart, err)
		}
	}
	total := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second + time.Duration(micro)*time.Microsecond
	if neg {
		total = -total
	}
	return total, nil
}

// canonicalTemporalText renders a decoded value in the canonical text form
// `yyyy-MM-dd HH:mm:ss[.SSSSSS]` (date-likes) or `[-]HH:MM:SS[.ffffff]`
// (durations), used by the string codec when a caller asks for HostString
// on a temporal column (§4.2).
func canonicalTemporalText(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		if t.Nanosecond() == 0 {
			return t.Format("2006-01-02 15:04:05"), nil
		}
		return t.Format("2006-01-02 15:04:05.000000"), nil
	case time.Duration:
		return formatDuration(t), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("mysql: cannot render %T as canonical temporal text", v)
	}
}

func formatDuration(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int64(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	seconds := int64(d / time.Second)
	d -= time.Duration(seconds) * time.Second
	micro := int64(d / time.Microsecond)

	sign := ""
	if neg {
		sign = "-"
	}
	if micro != 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d.%06d", sign, hours, minutes, seconds, micro)
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, hours, minutes, seconds)
}

func (temporalCodec) EncodeText(dst []byte, value any, ctx *Context) ([]byte, error) {
	s, err := canonicalTemporalText(value)
	if err != nil {
		return nil, err
	}
	return appendEscapedLiteral(dst, s, ctx != nil && ctx.NoBackslashEscapes), nil
}

// EncodeBinary emits the prepared-parameter binary form: a length byte
// followed by the populated fields, choosing the shortest representation
// that loses no precision (§4.2 "length 4 for date, 7 for date+time
// without sub-second, 11 with microseconds").
func (temporalCodec) EncodeBinary(dst []byte, value any, _ *Context) ([]byte, error) {
	switch t := value.(type) {
	case time.Time:
		switch {
		case t.Nanosecond() != 0:
			dst = append(dst, 11)
			dst = appendUint16LE(dst, uint16(t.Year()))
			dst = append(dst, byte(t.Month()), byte(t.Day()), byte(t.Hour()), byte(t.Minute()), byte(t.Second()))
			dst = append(dst, uint32ToBytes(uint32(t.Nanosecond()/1000))...)
		case t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0:
			dst = append(dst, 7)
			dst = appendUint16LE(dst, uint16(t.Year()))
			dst = append(dst, byte(t.Month()), byte(t.Day()), byte(t.Hour()), byte(t.Minute()), byte(t.Second()))
		default:
			dst = append(dst, 4)
			dst = appendUint16LE(dst, uint16(t.Year()))
			dst = append(dst, byte(t.Month()), byte(t.Day()))
		}
		return dst, nil
	case time.Duration:
		neg := t < 0
		if neg {
			t = -t
		}
		days := uint32(t / (24 * time.Hour))
		t -= time.Duration(days) * 24 * time.Hour
		hour := byte(t / time.Hour)
		t -= time.Duration(hour) * time.Hour
		minute := byte(t / time.Minute)
		t -= time.Duration(minute) * time.Minute
		second := byte(t / time.Second)
		t -= time.Duration(second) * time.Second
		micro := uint32(t / time.Microsecond)

		if micro != 0 {
			dst = append(dst, 12)
		} else {
			dst = append(dst, 8)
		}
		negByte := byte(0)
		if neg {
			negByte = 1
		}
		dst = append(dst, negByte)
		dst = append(dst, uint32ToBytes(days)...)
		dst = append(dst, hour, minute, second)
		if micro != 0 {
			dst = append(dst, uint32ToBytes(micro)...)
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("mysql: temporal codec cannot encode %T", value)
	}
}

func appendUint16LE(dst []byte, v uint16) []byte {
	return append(dst, byte(v), byte(v>>8))
}
