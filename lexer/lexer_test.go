package lexer

import (
	"testing"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `let five = 5;
let ten = 10;

let add = function(x, y) {
  x + y;
};

let result = add(five, ten);
!-/5*;
5 < 10 > 5;

if (5 < 10) {
	return true;
} else {
	return false;
}

10 == 10;
10 != 9;
`

	tests := []struct {
		expectedType    Token
		expectedLiteral string
	}{
		{LET, "let"},
		{IDENT, "five"},
		{ASSIGN, "="},
		{INT, "5"},
		{SEMICOLON, ";"},
		{LET, "let"},
		{IDENT, "ten"},
		{ASSIGN, "="},
		{INT, "10"},
		{SEMICOLON, ";"},
		{LET, "let"},
		{IDENT, "add"},
		{ASSIGN, "="},
		{FUNCTION, "function"},
		{LPAREN, "("},
		{IDENT, "x"},
		{COMMA, ","},
		{IDENT, "y"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{IDENT, "x"},
		{ADD, "+"},
		{IDENT, "y"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{SEMICOLON, ";"},
		{LET, "let"},
		{IDENT, "result"},
		{ASSIGN, "="},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "five"},
		{COMMA, ","},
		{IDENT, "ten"},
		{RPAREN, ")"},
		{SEMICOLON, ";"},
		{BANG, "!"},
		{SUB, "-"},
		{DIV, "/"},
		{INT, "5"},
		{MUL, "*"},
		{SEMICOLON, ";"},
		{INT, "5"},
		{LT, "<"},
		{INT, "10"},
		{GT, ">"},
		{INT, "5"},
		{SEMICOLON, ";"},
		{IF, "if"},
		{LPAREN, "("},
		{INT, "5"},
		{LT, "<"},
		{INT, "10"},
		{RPAREN, ")"},
		{LBRACE, "{"},
		{RETURN, "return"},
		{BOOLEAN, "true"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{ELSE, "else"},
		{LBRACE, "{"},
		{RETURN, "return"},
		{BOOLEAN, "false"},
		{SEMICOLON, ";"},
		{RBRACE, "}"},
		{INT, "10"},
		{EQ, "=="},
		{INT, "10"},
		{SEMICOLON, ";"},
		{INT, "10"},
		{NE, "!="},
		{INT, "9"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestLexerNumbers(t *testing.T) {
	input := `42 3.14 0x1A 0b1010 0o777`

	tests := []struct {
		expectedType    Token
		expectedLiteral string
	}{
		{INT, "42"},
		{FLOAT, "3.14"},
		{INT, "0x1A"},
		{INT, "0b1010"},
		{INT, "0o777"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// TestLexerNoScientificNotation documents the deliberate departure from
// typical numeric-literal lexing: "1e10" is two tokens, not a float.
func TestLexerNoScientificNotation(t *testing.T) {
	input := `1e10`

	tests := []struct {
		expectedType    Token
		expectedLiteral string
	}{
		{INT, "1"},
		{IDENT, "e10"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d]: expected %q %q, got %q %q", i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}
	}
}

func TestLexerStrings(t *testing.T) {
	input := `"hello world" 'x' ` + "`template string`"

	tests := []struct {
		expectedType    Token
		expectedLiteral string
	}{
		{STRING, "hello world"},
		{CHAR, "x"},
		{TEMPLATE, "template string"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestLexerCharVsString(t *testing.T) {
	// A single-quoted literal with more than one character is a STRING, not a CHAR.
	input := `'ab'`
	l := New(input)
	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "ab" {
		t.Fatalf("expected STRING %q, got %q %q", "ab", tok.Type, tok.Literal)
	}
}

func TestLexerRangeOperators(t *testing.T) {
	input := `0..10 0..<10 ...x .5`

	tests := []struct {
		expectedType    Token
		expectedLiteral string
	}{
		{INT, "0"},
		{RANGE_INCL, ".."},
		{INT, "10"},
		{INT, "0"},
		{RANGE_EXCL, "..<"},
		{INT, "10"},
		{SPREAD, "..."},
		{IDENT, "x"},
		{FLOAT, ".5"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType || tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d]: expected %q %q, got %q %q", i, tt.expectedType, tt.expectedLiteral, tok.Type, tok.Literal)
		}
	}
}

func TestLexerOperators(t *testing.T) {
	input := `++ -- += -= *= /= && || ?? ?. ... => &= |= ^= %= <<= `

	tests := []struct {
		expectedType    Token
		expectedLiteral string
	}{
		{INCREMENT, "++"},
		{DECREMENT, "--"},
		{ADD_ASSIGN, "+="},
		{SUB_ASSIGN, "-="},
		{MUL_ASSIGN, "*="},
		{DIV_ASSIGN, "/="},
		{LOGICAL_AND, "&&"},
		{LOGICAL_OR, "||"},
		{NULLISH, "??"},
		{OPTIONAL, "?."},
		{SPREAD, "..."},
		{ARROW, "=>"},
		{BIT_AND_ASSIGN, "&="},
		{BIT_OR_ASSIGN, "|="},
		{BIT_XOR_ASSIGN, "^="},
		{MOD_ASSIGN, "%="},
		{BIT_LSHIFT, "<<"},
		{ASSIGN, "="},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestLexerKeywords(t *testing.T) {
	input := `class interface type public private readonly weak async await typeof instanceof extern enum is of`

	tests := []struct {
		expectedType    Token
		expectedLiteral string
	}{
		{CLASS, "class"},
		{INTERFACE, "interface"},
		{TYPE, "type"},
		{PUBLIC, "public"},
		{PRIVATE, "private"},
		{READONLY, "readonly"},
		{WEAK, "weak"},
		{ASYNC, "async"},
		{AWAIT, "await"},
		{TYPEOF, "typeof"},
		{INSTANCEOF, "instanceof"},
		{EXTERN, "extern"},
		{ENUM, "enum"},
		{IS, "is"},
		{OF, "of"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestLexerPosition(t *testing.T) {
	input := `let x = 5;
let y = 10;`

	l := New(input)

	tok := l.NextToken() // "let"
	if tok.Position.Line != 1 || tok.Position.Column != 1 {
		t.Errorf("First token position wrong. expected line=1, column=1, got line=%d, column=%d",
			tok.Position.Line, tok.Position.Column)
	}

	for tok.Type != LET || tok.Position.Line != 2 {
		tok = l.NextToken()
	}

	if tok.Position.Line != 2 || tok.Position.Column != 1 {
		t.Errorf("Second line token position wrong. expected line=2, column=1, got line=%d, column=%d",
			tok.Position.Line, tok.Position.Column)
	}
}

func TestLexerErrors(t *testing.T) {
	input := `let x = @;` // @ is an illegal character

	l := New(input)

	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
	}

	if !l.HasErrors() {
		t.Error("Expected lexer to have errors, but it doesn't")
	}

	errors := l.GetErrors()
	if len(errors) == 0 {
		t.Error("Expected at least one error, got none")
	}
}

func TestLexerInvalidEscape(t *testing.T) {
	input := `"bad \q escape"`

	l := New(input)
	l.NextToken()

	if !l.HasErrors() {
		t.Error("Expected lexer error for invalid escape sequence")
	}
}

func TestTokenizeAll(t *testing.T) {
	input := `let x = 5;`

	l := New(input)
	tokens := l.TokenizeAll()

	expectedTokens := []Token{LET, IDENT, ASSIGN, INT, SEMICOLON, EOF}

	if len(tokens) != len(expectedTokens) {
		t.Fatalf("Expected %d tokens, got %d", len(expectedTokens), len(tokens))
	}

	for i, expectedType := range expectedTokens {
		if tokens[i].Type != expectedType {
			t.Errorf("Token %d: expected type %v, got %v", i, expectedType, tokens[i].Type)
		}
	}
}

// TestLexerCommentsAsTrivia verifies comments no longer surface as their own
// significant tokens; they ride along as LeadingTrivia on the next token.
func TestLexerCommentsAsTrivia(t *testing.T) {
	input := `// leading comment
let x = 5; // trailing comment
/* block
   comment */
let y = 10;`

	l := New(input)

	tok := l.NextToken() // "let" for x
	if tok.Type != LET {
		t.Fatalf("expected LET, got %v", tok.Type)
	}
	if len(tok.LeadingTrivia) != 1 || !tok.LeadingTrivia[0].IsComment {
		t.Fatalf("expected one leading comment trivia on first let, got %+v", tok.LeadingTrivia)
	}

	for tok.Type != SEMICOLON {
		tok = l.NextToken()
	}

	tok = l.NextToken() // "let" for y, should carry the trailing + block comment trivia
	if tok.Type != LET {
		t.Fatalf("expected LET, got %v", tok.Type)
	}
	if len(tok.LeadingTrivia) != 2 {
		t.Fatalf("expected 2 leading trivia (trailing comment + block comment), got %d: %+v", len(tok.LeadingTrivia), tok.LeadingTrivia)
	}
	if !tok.LeadingTrivia[0].SameLineAsPrev {
		t.Errorf("expected first trivia to be marked same-line-as-prev (trailing comment)")
	}
}

func TestLexerBlankLineTrivia(t *testing.T) {
	input := "let x = 5;\n\n\nlet y = 10;"

	l := New(input)
	for l.NextToken().Type != SEMICOLON {
	}
	tok := l.NextToken() // let y
	found := false
	for _, tr := range tok.LeadingTrivia {
		if !tr.IsComment && tr.Blanks > 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected blank-line trivia before second statement, got %+v", tok.LeadingTrivia)
	}
}

func TestLexerUnterminatedComment(t *testing.T) {
	input := `/* This comment is not closed`

	l := New(input)

	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
	}

	if !l.HasErrors() {
		t.Error("Expected lexer to have errors for unterminated comment, but it doesn't")
	}
}

func TestLexerTaggedTemplate(t *testing.T) {
	input := "sql`SELECT * FROM t`"

	l := New(input)
	tok := l.NextToken() // ident "sql"
	if tok.Type != IDENT {
		t.Fatalf("expected IDENT, got %v", tok.Type)
	}

	tok = l.NextToken()
	if tok.Type != TEMPLATE {
		t.Fatalf("expected TEMPLATE, got %v", tok.Type)
	}
	if !tok.Tagged || tok.TagName != "sql" {
		t.Errorf("expected tagged template with tag 'sql', got Tagged=%v TagName=%q", tok.Tagged, tok.TagName)
	}
}

func TestLexerNotTaggedWithSpace(t *testing.T) {
	input := "sql `SELECT * FROM t`"

	l := New(input)
	l.NextToken() // ident
	tok := l.NextToken()
	if tok.Tagged {
		t.Errorf("expected template not tagged when separated by whitespace")
	}
}
