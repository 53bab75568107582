package textextract

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

// TJ adjustments are in thousandths of an em; gaps wider than this read as
// a word break.
const kernSpace = -250

type tokKind int

const (
	tokOperator tokKind = iota
	tokNumber
	tokString
	tokName
	tokArray
	tokDict
)

type token struct {
	text  string
	items []token
	num   float64
	kind  tokKind
}

type separator int

const (
	sepNone separator = iota
	sepSpace
	sepLine
)

// textWriter places separators lazily so positioning operators between two
// runs collapse to a single space or newline.
type textWriter struct {
	out    strings.Builder
	sep    separator
	fromET bool
}

func (w *textWriter) breakAt(s separator) {
	if s > w.sep {
		w.sep = s
	}
}

func (w *textWriter) write(s string) {
	if s == "" {
		return
	}
	if w.out.Len() > 0 {
		switch w.sep {
		case sepSpace:
			if !strings.HasSuffix(w.out.String(), " ") && !strings.HasPrefix(s, " ") {
				w.out.WriteByte(' ')
			}
		case sepLine:
			w.out.WriteByte('\n')
		}
	}
	w.sep = sepNone
	w.fromET = false
	w.out.WriteString(s)
}

// ContentText decodes the text-showing operators (Tj, TJ, ' and ") of a
// PDF content stream. Positioning operators become spaces or newlines.
// Glyphs in fonts with custom CMaps are decoded as WinAnsi and may come out
// garbled.
func ContentText(stream []byte) string {
	l := &lexer{data: stream}
	w := &textWriter{}

	var (
		operands []token
		lastY    float64
		haveY    bool
	)

	for {
		tok, ok := l.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "Tj":
			if s, ok := lastOfKind(operands, tokString); ok {
				w.write(s.text)
			}
		case "'", `"`:
			w.breakAt(sepLine)
			if s, ok := lastOfKind(operands, tokString); ok {
				w.write(s.text)
			}
		case "TJ":
			if arr, ok := lastOfKind(operands, tokArray); ok {
				for _, item := range arr.items {
					switch item.kind {
					case tokString:
						w.write(item.text)
					case tokNumber:
						if item.num < kernSpace {
							w.breakAt(sepSpace)
						}
					}
				}
			}
		case "Td", "TD":
			if len(operands) >= 2 {
				tx, ty := operands[len(operands)-2].num, operands[len(operands)-1].num
				switch {
				case ty != 0:
					w.breakAt(sepLine)
				case tx != 0:
					w.breakAt(sepSpace)
				}
			}
		case "T*":
			w.breakAt(sepLine)
		case "Tm":
			if len(operands) >= 6 {
				y := operands[len(operands)-1].num
				switch {
				case haveY && y == lastY && w.sep == sepLine && w.fromET:
					w.sep = sepSpace
				case haveY && y != lastY:
					w.breakAt(sepLine)
				}
				lastY, haveY = y, true
			}
		case "ET":
			w.breakAt(sepLine)
			w.fromET = true
		case "BI":
			l.skipInlineImage()
		}
		operands = operands[:0]
	}

	return w.out.String()
}

func lastOfKind(operands []token, kind tokKind) (token, bool) {
	for i := len(operands) - 1; i >= 0; i-- {
		if operands[i].kind == kind {
			return operands[i], true
		}
	}
	return token{}, false
}

type lexer struct {
	data []byte
	pos  int
}

func isSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch {
		case isSpace(c):
			l.pos++
		case c == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, bool) {
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return token{}, false
		}

		c := l.data[l.pos]
		switch c {
		case '(':
			return token{kind: tokString, text: l.literal()}, true
		case '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.pos += 2
				return token{kind: tokDict}, true
			}
			return token{kind: tokString, text: l.hex()}, true
		case '>':
			l.pos++
			if l.pos < len(l.data) && l.data[l.pos] == '>' {
				l.pos++
			}
			return token{kind: tokDict}, true
		case '[':
			l.pos++
			return token{kind: tokArray, items: l.array()}, true
		case '/':
			l.pos++
			return token{kind: tokName, text: l.word()}, true
		case ']', ')', '{', '}':
			l.pos++
			continue
		}

		word := l.word()
		if word == "" {
			l.pos++
			continue
		}
		if f, err := strconv.ParseFloat(word, 64); err == nil {
			return token{kind: tokNumber, text: word, num: f}, true
		}
		return token{kind: tokOperator, text: word}, true
	}
}

func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

func (l *lexer) array() []token {
	var items []token
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return items
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return items
		}
		tok, ok := l.next()
		if !ok {
			return items
		}
		items = append(items, tok)
	}
}

// literal reads a (...) string with nested parentheses and escapes.
func (l *lexer) literal() string {
	l.pos++ // (
	var buf []byte
	depth := 1

	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++

		switch c {
		case '\\':
			if l.pos >= len(l.data) {
				return decodeBytes(buf)
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
					v = v*8 + int(l.data[l.pos]-'0')
					l.pos++
				}
				buf = append(buf, byte(v))
			default:
				buf = append(buf, e)
			}
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return decodeBytes(buf)
			}
			buf = append(buf, c)
		default:
			buf = append(buf, c)
		}
	}
	return decodeBytes(buf)
}

// hex reads a <...> string.
func (l *lexer) hex() string {
	l.pos++ // <
	var digits []byte
	for l.pos < len(l.data) && l.data[l.pos] != '>' {
		if c := l.data[l.pos]; !isSpace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	l.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	buf := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		buf = append(buf, byte(v))
	}
	return decodeBytes(buf)
}

// skipInlineImage moves past BI ... ID <binary> EI.
func (l *lexer) skipInlineImage() {
	for {
		tok, ok := l.next()
		if !ok {
			return
		}
		if tok.kind == tokOperator && tok.text == "ID" {
			break
		}
	}
	for i := l.pos; i+1 < len(l.data); i++ {
		if l.data[i] == 'E' && l.data[i+1] == 'I' &&
			(i == 0 || isSpace(l.data[i-1])) &&
			(i+2 >= len(l.data) || isSpace(l.data[i+2])) {
			l.pos = i + 2
			return
		}
	}
	l.pos = len(l.data)
}

var utf16BOM = []byte{0xFE, 0xFF}

// decodeBytes reads UTF-16BE when the string carries a BOM and WinAnsi
// otherwise.
func decodeBytes(b []byte) string {
	if bytes.HasPrefix(b, utf16BOM) {
		out, err := xunicode.UTF16(xunicode.BigEndian, xunicode.ExpectBOM).NewDecoder().Bytes(b)
		if err == nil {
			return string(out)
		}
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
