package parser

import (
	"fmt"
	"strconv"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/lexer"
)

// Parser represents the parser state. The whole token stream is scanned up
// front so speculative parses (arrow-function parameter lists, generic call
// argument lists) can rewind without disturbing lexer state.
type Parser struct {
	tokens []lexer.TokenInfo
	pos    int // index of peekToken within tokens

	currentToken lexer.TokenInfo
	peekToken    lexer.TokenInfo

	// noObjLiteral suppresses the `Ident { ... }` object-literal form while
	// parsing a condition or for-of source, where '{' opens the body block.
	noObjLiteral bool

	prefixParseFns map[lexer.Token]prefixParseFn
	infixParseFns  map[lexer.Token]infixParseFn

	errors []string
}

// New creates a new parser instance.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		tokens: l.TokenizeAll(),
		errors: []string{},
	}
	for _, msg := range l.GetErrors() {
		p.errors = append(p.errors, msg)
	}

	p.registerParseFns()

	// Read two tokens, so currentToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// nextToken advances both currentToken and peekToken.
func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	}
}

// mark records the parser position for a later rewind.
func (p *Parser) mark() (int, lexer.TokenInfo, lexer.TokenInfo, int) {
	return p.pos, p.currentToken, p.peekToken, len(p.errors)
}

// rewind restores a position recorded by mark, dropping any errors added
// during the abandoned speculative parse.
func (p *Parser) rewind(pos int, cur, peek lexer.TokenInfo, errs int) {
	p.pos = pos
	p.currentToken = cur
	p.peekToken = peek
	p.errors = p.errors[:errs]
}

// Errors returns the list of parsing errors.
func (p *Parser) Errors() []string {
	return p.errors
}

// addError adds an error message with the current token's position.
func (p *Parser) addError(msg string) {
	pos := p.currentToken.Position
	p.errors = append(p.errors, fmt.Sprintf("%s:%d:%d: %s", pos.File, pos.Line, pos.Column, msg))
}

// addErrorf adds a formatted error message to the parser's error list.
func (p *Parser) addErrorf(format string, args ...interface{}) {
	p.addError(fmt.Sprintf(format, args...))
}

// expectPeek checks if the peek token is of the expected type and advances if so.
func (p *Parser) expectPeek(tokenType lexer.Token) bool {
	if p.peekToken.Type == tokenType {
		p.nextToken()
		return true
	}
	p.addErrorf("expected next token to be %s, got %s", tokenType, p.peekToken.Type)
	return false
}

// currentTokenIs checks if the current token is of the given type.
func (p *Parser) currentTokenIs(tokenType lexer.Token) bool {
	return p.currentToken.Type == tokenType
}

// peekTokenIs checks if the peek token is of the given type.
func (p *Parser) peekTokenIs(tokenType lexer.Token) bool {
	return p.peekToken.Type == tokenType
}

// canInsertSemicolon checks if a semicolon can be automatically inserted.
func (p *Parser) canInsertSemicolon() bool {
	if p.peekToken.Type == lexer.EOF {
		return true
	}
	if p.peekToken.Type == lexer.RBRACE {
		return true
	}
	if p.currentToken.Position.Line < p.peekToken.Position.Line {
		return true
	}
	return false
}

// finishStatement consumes an optional trailing semicolon, applying ASI,
// and returns its position (zero when inserted).
func (p *Parser) finishStatement(what string) lexer.Position {
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return p.currentToken.Position
	}
	if !p.canInsertSemicolon() {
		p.addErrorf("expected ';' or line break after %s, got %s", what, p.peekToken.Type)
	}
	return lexer.Position{}
}

// synchronize skips tokens until the next statement boundary: a ';', a
// '}', or a token that can begin a statement. Used for parse-error
// recovery so one bad statement does not cascade.
func (p *Parser) synchronize() {
	for !p.currentTokenIs(lexer.EOF) {
		if p.currentTokenIs(lexer.SEMICOLON) || p.currentTokenIs(lexer.RBRACE) {
			return
		}
		switch p.peekToken.Type {
		case lexer.LET, lexer.CONST, lexer.FUNCTION, lexer.CLASS, lexer.EXTERN,
			lexer.INTERFACE, lexer.TYPE, lexer.ENUM, lexer.IMPORT,
			lexer.IF, lexer.WHILE, lexer.FOR, lexer.SWITCH,
			lexer.RETURN, lexer.BREAK, lexer.CONTINUE:
			return
		}
		p.nextToken()
	}
}

// ============================================================================
// PRECEDENCE HANDLING
// ============================================================================

// Precedence represents operator precedence levels.
type Precedence int

const (
	_ Precedence = iota
	LOWEST
	ARROW       // =>
	ASSIGN      // =, +=, -=, etc.
	TERNARY     // ? :
	RANGE       // .., ..<
	NULLISH     // ??
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	BITWISE_OR  // |
	BITWISE_XOR // ^
	BITWISE_AND // &
	EQUALITY    // ==, !=
	RELATIONAL  // <, >, <=, >=, is, as, in, instanceof
	SHIFT       // <<, >>
	SUM         // +, -
	PRODUCT     // *, /, %
	UNARY       // !, -, +, ~
	POSTFIX     // ++, --, !
	CALL        // (), [], .
	MEMBER      // .
	PRIMARY     // literals, identifiers
)

// precedences maps token types to their precedence levels.
var precedences = map[lexer.Token]Precedence{
	lexer.ARROW: ARROW,

	lexer.ASSIGN:         ASSIGN,
	lexer.ADD_ASSIGN:     ASSIGN,
	lexer.SUB_ASSIGN:     ASSIGN,
	lexer.MUL_ASSIGN:     ASSIGN,
	lexer.DIV_ASSIGN:     ASSIGN,
	lexer.MOD_ASSIGN:     ASSIGN,
	lexer.BIT_AND_ASSIGN: ASSIGN,
	lexer.BIT_OR_ASSIGN:  ASSIGN,
	lexer.BIT_XOR_ASSIGN: ASSIGN,

	lexer.QUESTION: TERNARY,

	lexer.RANGE_INCL: RANGE,
	lexer.RANGE_EXCL: RANGE,

	lexer.NULLISH: NULLISH,

	lexer.LOGICAL_OR:  LOGICAL_OR,
	lexer.LOGICAL_AND: LOGICAL_AND,

	lexer.BIT_OR:  BITWISE_OR,
	lexer.BIT_XOR: BITWISE_XOR,
	lexer.BIT_AND: BITWISE_AND,

	lexer.EQ: EQUALITY,
	lexer.NE: EQUALITY,

	lexer.LT:         RELATIONAL,
	lexer.GT:         RELATIONAL,
	lexer.LE:         RELATIONAL,
	lexer.GE:         RELATIONAL,
	lexer.INSTANCEOF: RELATIONAL,
	lexer.IN:         RELATIONAL,
	lexer.IS:         RELATIONAL,
	lexer.AS:         RELATIONAL,

	lexer.BIT_LSHIFT: SHIFT,
	lexer.BIT_RSHIFT: SHIFT,

	lexer.ADD: SUM,
	lexer.SUB: SUM,

	lexer.MUL: PRODUCT,
	lexer.DIV: PRODUCT,
	lexer.MOD: PRODUCT,

	lexer.LPAREN:    CALL,
	lexer.LBRACKET:  CALL,
	lexer.DOT:       MEMBER,
	lexer.OPTIONAL:  MEMBER,
	lexer.BANG:      POSTFIX,
	lexer.INCREMENT: POSTFIX,
	lexer.DECREMENT: POSTFIX,
}

// peekPrecedence returns the precedence of the peek token.
func (p *Parser) peekPrecedence() Precedence {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// currentPrecedence returns the precedence of the current token.
func (p *Parser) currentPrecedence() Precedence {
	if prec, ok := precedences[p.currentToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ============================================================================
// MAIN PARSING FUNCTIONS
// ============================================================================

// ParseProgram parses the entire program and returns the AST.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{
		Body: []ast.Statement{},
	}

	for !p.currentTokenIs(lexer.EOF) {
		program.Body = append(program.Body, p.triviaStatements()...)
		if p.currentTokenIs(lexer.EOF) {
			break
		}
		errsBefore := len(p.errors)
		stmt := p.parseStatement()
		if stmt != nil {
			program.Body = append(program.Body, stmt)
		}
		if stmt == nil && len(p.errors) > errsBefore {
			p.synchronize()
		}
		p.nextToken()
	}
	program.Body = append(program.Body, p.triviaStatements()...)

	return program
}

// triviaStatements drains the leading trivia attached to the current token
// into blank/comment statements, preserving source formatting.
func (p *Parser) triviaStatements() []ast.Statement {
	if len(p.currentToken.LeadingTrivia) == 0 {
		return nil
	}
	var stmts []ast.Statement
	for _, tr := range p.currentToken.LeadingTrivia {
		if tr.IsComment {
			stmts = append(stmts, &ast.CommentStatement{
				TextPos:  tr.Position,
				Text:     tr.Text,
				Block:    tr.Block,
				Trailing: tr.SameLineAsPrev,
			})
		} else if tr.Blanks > 0 {
			stmts = append(stmts, &ast.BlankStatement{
				BlankPos: tr.Position,
				Count:    tr.Blanks,
			})
		}
	}
	p.currentToken.LeadingTrivia = nil
	return stmts
}

// parseStatement parses a statement.
func (p *Parser) parseStatement() ast.Statement {
	switch p.currentToken.Type {
	case lexer.LET, lexer.CONST:
		return p.parseVariableDeclaration()
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration(false)
	case lexer.ASYNC:
		if p.peekTokenIs(lexer.FUNCTION) {
			p.nextToken()
			return p.parseFunctionDeclaration(true)
		}
		return p.parseExpressionStatement()
	case lexer.CLASS:
		return p.parseClassDeclaration()
	case lexer.EXTERN:
		return p.parseExternClassDeclaration()
	case lexer.INTERFACE:
		return p.parseInterfaceDeclaration()
	case lexer.TYPE:
		return p.parseTypeAliasDeclaration()
	case lexer.ENUM:
		return p.parseEnumDeclaration()
	case lexer.IMPORT:
		return p.parseImportDeclaration()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.SWITCH:
		return p.parseSwitchStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.SEMICOLON:
		return &ast.EmptyStatement{Semicolon: p.currentToken.Position}
	default:
		return p.parseExpressionStatement()
	}
}

// ============================================================================
// UTILITY FUNCTIONS
// ============================================================================

// parseIdentifier parses an identifier.
func (p *Parser) parseIdentifier() *ast.Identifier {
	if !p.currentTokenIs(lexer.IDENT) {
		p.addErrorf("expected identifier, got %s", p.currentToken.Type)
		return nil
	}
	return &ast.Identifier{
		NamePos: p.currentToken.Position,
		Name:    p.currentToken.Literal,
	}
}

// parseIntegerLiteral parses an integer literal.
func (p *Parser) parseIntegerLiteral() *ast.IntegerLiteral {
	lit := &ast.IntegerLiteral{
		ValuePos: p.currentToken.Position,
		Raw:      p.currentToken.Literal,
	}

	value, err := strconv.ParseInt(p.currentToken.Literal, 0, 64)
	if err != nil {
		p.addErrorf("could not parse %q as integer", p.currentToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

// parseFloatLiteral parses a float literal.
func (p *Parser) parseFloatLiteral() *ast.FloatLiteral {
	lit := &ast.FloatLiteral{
		ValuePos: p.currentToken.Position,
		Raw:      p.currentToken.Literal,
	}

	value, err := strconv.ParseFloat(p.currentToken.Literal, 64)
	if err != nil {
		p.addErrorf("could not parse %q as float", p.currentToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

// parseStringLiteral parses a string literal.
func (p *Parser) parseStringLiteral() *ast.StringLiteral {
	return &ast.StringLiteral{
		ValuePos: p.currentToken.Position,
		Value:    unescape(p.currentToken.Literal),
		Raw:      "\"" + p.currentToken.Literal + "\"",
	}
}

// parseCharLiteral parses a char literal.
func (p *Parser) parseCharLiteral() *ast.CharLiteral {
	lit := &ast.CharLiteral{
		ValuePos: p.currentToken.Position,
		Raw:      "'" + p.currentToken.Literal + "'",
	}
	value := unescape(p.currentToken.Literal)
	for _, r := range value {
		lit.Value = r
		break
	}
	return lit
}

// unescape resolves the admissible escape sequences
// (\n \t \r \\ \' \" \0 \xHH) in a raw literal body.
func unescape(s string) string {
	if len(s) == 0 {
		return s
	}
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			out = append(out, s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '\\':
			out = append(out, '\\')
		case '\'':
			out = append(out, '\'')
		case '"':
			out = append(out, '"')
		case '0':
			out = append(out, 0)
		case 'x':
			if i+2 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					out = append(out, byte(v))
					i += 2
					continue
				}
			}
			out = append(out, 'x')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
