/* Copyright (c) 2018 Jason Ish
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions
 * are met:
 *
 * 1. Redistributions of source code must retain the above copyright
 *    notice, this list of conditions and the following disclaimer.
 * 2. Redistributions in binary form must reproduce the above copyright
 *    notice, this list of conditions and the following disclaimer in the
 *    documentation and/or other materials provided with the distribution.
 *
 * THIS SOFTWARE IS PROVIDED ``AS IS'' AND ANY EXPRESS OR IMPLIED
 * WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
 * DISCLAIMED. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY DIRECT,
 * INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES
 * (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
 * SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION)
 * HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT,
 * STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING
 * IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

package pcre

import "strings"

// EscapeSet is the set of characters escaped with a backslash when a
// content string is copied into a pattern.
type EscapeSet string

const (
	// DefaultEscapeSet escapes the PCRE metacharacters and the / delimiter.
	DefaultEscapeSet EscapeSet = `.^$*+?()[{\/`

	// LegacyEscapeSet leaves / unescaped, for consumers that do not wrap
	// the patterns in delimiters.
	LegacyEscapeSet EscapeSet = `.^$*+?()[{\`
)

// Contains reports whether c is escaped. A | is always escaped since it
// can only come from an escaped pipe in the content.
func (s EscapeSet) Contains(c byte) bool {
	return c == '|' || strings.IndexByte(string(s), c) >= 0
}

func (s EscapeSet) writeByte(b *strings.Builder, c byte) {
	if s.Contains(c) {
		b.WriteByte('\\')
	}
	b.WriteByte(c)
}
