package parser

import "strconv"

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// unquoteChar strips the surrounding quotes from a CHAR_LIT lexeme,
// leaving its (possibly escaped) contents as the original Python lexer
// does — MiniC never interprets the escape, it is carried verbatim.
func unquoteChar(lexeme string) string {
	if len(lexeme) < 2 {
		return lexeme
	}
	return lexeme[1 : len(lexeme)-1]
}
