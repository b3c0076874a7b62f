package parser

import (
	"strings"

	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/lexer"
)

// ============================================================================
// EXPRESSION PARSING
// ============================================================================

// Pratt parser function types
type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// registerPrefix registers a prefix parse function for a token type.
func (p *Parser) registerPrefix(tokenType lexer.Token, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

// registerInfix registers an infix parse function for a token type.
func (p *Parser) registerInfix(tokenType lexer.Token, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// registerParseFns fills the Pratt dispatch tables.
func (p *Parser) registerParseFns() {
	p.prefixParseFns = map[lexer.Token]prefixParseFn{}
	p.infixParseFns = map[lexer.Token]infixParseFn{}

	p.registerPrefix(lexer.IDENT, p.parseIdentifierExpression)
	p.registerPrefix(lexer.THIS, p.parseThisExpression)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteralExpression)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteralExpression)
	p.registerPrefix(lexer.STRING, p.parseStringLiteralExpression)
	p.registerPrefix(lexer.CHAR, p.parseCharLiteralExpression)
	p.registerPrefix(lexer.TEMPLATE, p.parseTemplateLiteralExpression)
	p.registerPrefix(lexer.BOOLEAN, p.parseBooleanLiteralExpression)
	p.registerPrefix(lexer.NULL, p.parseNullLiteralExpression)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.SUB, p.parsePrefixExpression)
	p.registerPrefix(lexer.ADD, p.parsePrefixExpression)
	p.registerPrefix(lexer.BIT_NOT, p.parsePrefixExpression)
	p.registerPrefix(lexer.INCREMENT, p.parsePrefixExpression)
	p.registerPrefix(lexer.DECREMENT, p.parsePrefixExpression)
	p.registerPrefix(lexer.TYPEOF, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionExpression)
	p.registerPrefix(lexer.NEW, p.parseNewExpression)
	p.registerPrefix(lexer.AWAIT, p.parseAwaitExpression)
	p.registerPrefix(lexer.ASYNC, p.parseAsyncCallExpression)
	p.registerPrefix(lexer.DOT, p.parseEnumShorthandExpression)

	p.registerInfix(lexer.ADD, p.parseInfixExpression)
	p.registerInfix(lexer.SUB, p.parseInfixExpression)
	p.registerInfix(lexer.MUL, p.parseInfixExpression)
	p.registerInfix(lexer.DIV, p.parseInfixExpression)
	p.registerInfix(lexer.MOD, p.parseInfixExpression)
	p.registerInfix(lexer.EQ, p.parseInfixExpression)
	p.registerInfix(lexer.NE, p.parseInfixExpression)
	p.registerInfix(lexer.LT, p.parseInfixExpression)
	p.registerInfix(lexer.GT, p.parseInfixExpression)
	p.registerInfix(lexer.LE, p.parseInfixExpression)
	p.registerInfix(lexer.GE, p.parseInfixExpression)
	p.registerInfix(lexer.LOGICAL_AND, p.parseInfixExpression)
	p.registerInfix(lexer.LOGICAL_OR, p.parseInfixExpression)
	p.registerInfix(lexer.BIT_AND, p.parseInfixExpression)
	p.registerInfix(lexer.BIT_OR, p.parseInfixExpression)
	p.registerInfix(lexer.BIT_XOR, p.parseInfixExpression)
	p.registerInfix(lexer.BIT_LSHIFT, p.parseInfixExpression)
	p.registerInfix(lexer.BIT_RSHIFT, p.parseInfixExpression)
	p.registerInfix(lexer.INSTANCEOF, p.parseInfixExpression)
	p.registerInfix(lexer.IN, p.parseInfixExpression)
	p.registerInfix(lexer.NULLISH, p.parseInfixExpression)
	p.registerInfix(lexer.ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.ADD_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.SUB_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.MUL_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.DIV_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.MOD_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.BIT_AND_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.BIT_OR_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.BIT_XOR_ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)
	p.registerInfix(lexer.OPTIONAL, p.parseOptionalChainingExpression)
	p.registerInfix(lexer.QUESTION, p.parseTernaryExpression)
	p.registerInfix(lexer.RANGE_INCL, p.parseRangeExpression)
	p.registerInfix(lexer.RANGE_EXCL, p.parseRangeExpression)
	p.registerInfix(lexer.IS, p.parseTypeTestExpression)
	p.registerInfix(lexer.AS, p.parseCastExpression)
	p.registerInfix(lexer.BANG, p.parseNonNullAssertion)
	p.registerInfix(lexer.INCREMENT, p.parsePostfixExpression)
	p.registerInfix(lexer.DECREMENT, p.parsePostfixExpression)
	p.registerInfix(lexer.ARROW, p.parseArrowFunctionExpression)
}

// parseExpression parses an expression using Pratt parsing.
func (p *Parser) parseExpression(precedence Precedence) ast.Expression {
	prefix := p.prefixParseFns[p.currentToken.Type]
	if prefix == nil {
		p.addErrorf("unexpected token %s in expression", p.currentToken.Type)
		return nil
	}

	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

// ============================================================================
// PREFIX EXPRESSIONS
// ============================================================================

// parseIdentifierExpression parses an identifier, plus the three forms an
// identifier can open: a tagged template (html`...`, adjacency reported by
// the lexer), a generic call (identity<int>(7)), and object-literal
// construction (Point { x: 1 }).
func (p *Parser) parseIdentifierExpression() ast.Expression {
	ident := &ast.Identifier{
		NamePos: p.currentToken.Position,
		Name:    p.currentToken.Literal,
	}

	if (p.peekTokenIs(lexer.TEMPLATE) || p.peekTokenIs(lexer.STRING)) && p.peekToken.Tagged {
		p.nextToken()
		return p.parseTaggedTemplate(ident)
	}

	if p.peekTokenIs(lexer.LT) {
		if call := p.tryGenericCall(ident); call != nil {
			return call
		}
	}

	if p.peekTokenIs(lexer.LBRACE) && !p.noObjLiteral {
		p.nextToken()
		obj := p.parseObjectLiteral()
		if ol, ok := obj.(*ast.ObjectLiteral); ok {
			ol.Class = ident
			return ol
		}
		return obj
	}

	return ident
}

// tryGenericCall speculatively parses `<T, ...>(args)` after an
// identifier, rewinding when the angle bracket turns out to be a
// comparison.
func (p *Parser) tryGenericCall(callee ast.Expression) ast.Expression {
	pos, cur, peek, errs := p.mark()

	p.nextToken() // onto '<'
	typeArgs := p.parseTypeArgumentList()
	if typeArgs == nil || !p.peekTokenIs(lexer.LPAREN) {
		p.rewind(pos, cur, peek, errs)
		return nil
	}

	p.nextToken()
	call := &ast.CallExpression{
		Callee:   callee,
		TypeArgs: typeArgs,
		LParen:   p.currentToken.Position,
	}
	call.Arguments = p.parseExpressionList(lexer.RPAREN)
	if p.currentTokenIs(lexer.RPAREN) {
		call.RParen = p.currentToken.Position
	}
	return call
}

// parseThisExpression parses the this keyword.
func (p *Parser) parseThisExpression() ast.Expression {
	return &ast.Identifier{
		NamePos: p.currentToken.Position,
		Name:    p.currentToken.Literal,
	}
}

// parseIntegerLiteralExpression parses an integer literal expression.
func (p *Parser) parseIntegerLiteralExpression() ast.Expression {
	lit := p.parseIntegerLiteral()
	if lit == nil {
		return nil
	}
	return lit
}

// parseFloatLiteralExpression parses a float literal expression.
func (p *Parser) parseFloatLiteralExpression() ast.Expression {
	lit := p.parseFloatLiteral()
	if lit == nil {
		return nil
	}
	return lit
}

// parseStringLiteralExpression parses a string literal expression.
func (p *Parser) parseStringLiteralExpression() ast.Expression {
	return p.parseStringLiteral()
}

// parseCharLiteralExpression parses a char literal expression.
func (p *Parser) parseCharLiteralExpression() ast.Expression {
	return p.parseCharLiteral()
}

// parseBooleanLiteralExpression parses a boolean literal expression.
func (p *Parser) parseBooleanLiteralExpression() ast.Expression {
	return &ast.BooleanLiteral{
		ValuePos: p.currentToken.Position,
		Value:    p.currentToken.Literal == "true",
		Raw:      p.currentToken.Literal,
	}
}

// parseNullLiteralExpression parses a null literal expression.
func (p *Parser) parseNullLiteralExpression() ast.Expression {
	return &ast.NullLiteral{
		ValuePos: p.currentToken.Position,
	}
}

// parseTemplateLiteralExpression parses an untagged template literal.
func (p *Parser) parseTemplateLiteralExpression() ast.Expression {
	return p.parseTemplateBody(nil)
}

// parseTaggedTemplate parses a template (or tagged plain string) whose tag
// identifier was directly adjacent to the opening quote.
func (p *Parser) parseTaggedTemplate(tag *ast.Identifier) ast.Expression {
	if p.currentTokenIs(lexer.STRING) {
		// Tagged plain string: one chunk, no interpolations.
		return &ast.TemplateLiteral{
			Backtick: p.currentToken.Position,
			Tag:      tag,
			Chunks:   []string{unescape(p.currentToken.Literal)},
			Raw:      p.currentToken.Literal,
			EndPos:   endOfToken(p.currentToken),
		}
	}
	return p.parseTemplateBody(tag)
}

// parseTemplateBody splits a TEMPLATE token body into text chunks and
// interpolated expressions. Interpolation sources are re-parsed with a
// fresh sub-parser, re-entering expression mode inside ${...}.
func (p *Parser) parseTemplateBody(tag *ast.Identifier) ast.Expression {
	raw := p.currentToken.Literal
	tl := &ast.TemplateLiteral{
		Backtick: p.currentToken.Position,
		Tag:      tag,
		Raw:      raw,
		EndPos:   endOfToken(p.currentToken),
	}

	var chunk strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			chunk.WriteByte(raw[i])
			chunk.WriteByte(raw[i+1])
			i++
			continue
		}
		if raw[i] == '$' && i+1 < len(raw) && raw[i+1] == '{' {
			depth := 1
			j := i + 2
			for j < len(raw) && depth > 0 {
				switch raw[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				j++
			}
			if depth != 0 {
				p.addError("unterminated interpolation in template string")
				break
			}
			tl.Chunks = append(tl.Chunks, unescape(chunk.String()))
			chunk.Reset()

			src := raw[i+2 : j-1]
			sub := New(lexer.NewFile(p.currentToken.Position.File, src))
			expr := sub.parseExpression(LOWEST)
			p.errors = append(p.errors, sub.errors...)
			if expr != nil {
				tl.Exprs = append(tl.Exprs, expr)
			}
			i = j - 1
			continue
		}
		chunk.WriteByte(raw[i])
	}
	tl.Chunks = append(tl.Chunks, unescape(chunk.String()))

	return tl
}

func endOfToken(tok lexer.TokenInfo) lexer.Position {
	n := len(tok.Literal) + 2 // include delimiters
	return lexer.Position{
		File:   tok.Position.File,
		Line:   tok.Position.Line,
		Column: tok.Position.Column + n,
		Offset: tok.Position.Offset + n,
	}
}

// parsePrefixExpression parses a prefix expression (unary operators).
func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.UnaryExpression{
		OpPos:    p.currentToken.Position,
		Operator: p.currentToken.Type,
	}

	p.nextToken()
	expression.Operand = p.parseExpression(UNARY)

	return expression
}

// parseGroupedExpression parses a parenthesized expression or an arrow
// function parameter list. The parameter-list reading is attempted first
// and rewound when no '=>' follows.
func (p *Parser) parseGroupedExpression() ast.Expression {
	lparen := p.currentToken.Position
	pos, cur, peek, errs := p.mark()

	if arrow := p.tryArrowFunction(lparen); arrow != nil {
		return arrow
	}
	p.rewind(pos, cur, peek, errs)

	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return exp
}

// tryArrowFunction speculatively parses `(params) => body` from just
// after the opening parenthesis. Returns nil when the shape is not an
// arrow function.
func (p *Parser) tryArrowFunction(lparen lexer.Position) ast.Expression {
	arrow := &ast.ArrowFunctionExpression{LParen: lparen}

	arrow.Parameters = p.parseParameterList()
	if !p.currentTokenIs(lexer.RPAREN) {
		return nil
	}
	arrow.RParen = p.currentToken.Position

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		arrow.ReturnType = p.parseTypeAnnotation()
		if arrow.ReturnType == nil {
			return nil
		}
	}

	if !p.peekTokenIs(lexer.ARROW) {
		return nil
	}
	p.nextToken()
	arrow.Arrow = p.currentToken.Position
	p.nextToken()
	arrow.Body = p.parseArrowBody()

	return arrow
}

// parseArrowBody parses an arrow function body; expression bodies are
// wrapped in a synthetic return-statement block.
func (p *Parser) parseArrowBody() *ast.BlockStatement {
	if p.currentTokenIs(lexer.LBRACE) {
		return p.parseBlockStatement()
	}
	expr := p.parseExpression(LOWEST)
	block := &ast.BlockStatement{LBrace: p.currentToken.Position, RBrace: p.currentToken.Position}
	if expr != nil {
		block.Body = []ast.Statement{&ast.ReturnStatement{
			ReturnPos: expr.Pos(),
			Argument:  expr,
		}}
	}
	return block
}

// parseArrayLiteral parses an array literal.
func (p *Parser) parseArrayLiteral() ast.Expression {
	array := &ast.ArrayLiteral{
		LBracket: p.currentToken.Position,
	}

	array.Elements = p.parseExpressionList(lexer.RBRACKET)

	if p.currentTokenIs(lexer.RBRACKET) {
		array.RBracket = p.currentToken.Position
	}

	return array
}

// parseObjectLiteral parses an object literal body. The caller sets the
// target class for the `Point { ... }` form.
func (p *Parser) parseObjectLiteral() ast.Expression {
	obj := &ast.ObjectLiteral{
		LBrace: p.currentToken.Position,
	}

	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		obj.RBrace = p.currentToken.Position
		return obj
	}

	p.nextToken()

	for {
		prop := p.parseObjectProperty()
		if prop != nil {
			obj.Properties = append(obj.Properties, prop)
		}

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(lexer.RBRACE) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}

	obj.RBrace = p.currentToken.Position
	return obj
}

// parseObjectProperty parses one object-literal property. Computed keys
// ([expr]) are rejected; quoted keys are preserved exactly.
func (p *Parser) parseObjectProperty() *ast.Property {
	prop := &ast.Property{}

	switch p.currentToken.Type {
	case lexer.IDENT:
		prop.Key = p.parseIdentifier()
	case lexer.STRING:
		prop.Key = p.parseStringLiteral()
	case lexer.LBRACKET:
		p.addError("computed property names are not supported")
		return nil
	default:
		p.addErrorf("expected property key, got %s", p.currentToken.Type)
		return nil
	}

	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	prop.Colon = p.currentToken.Position

	p.nextToken()
	prop.Value = p.parseExpression(LOWEST)

	return prop
}

// parseFunctionExpression parses a function expression.
func (p *Parser) parseFunctionExpression() ast.Expression {
	fn := &ast.FunctionExpression{
		FunctionPos: p.currentToken.Position,
	}

	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		fn.Name = p.parseIdentifier()
	}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	fn.LParen = p.currentToken.Position
	fn.Parameters = p.parseParameterList()
	if p.currentTokenIs(lexer.RPAREN) {
		fn.RParen = p.currentToken.Position
	}

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseTypeAnnotation()
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockStatement()

	return fn
}

// parseNewExpression parses `new Callee(args)`.
func (p *Parser) parseNewExpression() ast.Expression {
	expr := &ast.NewExpression{
		NewPos: p.currentToken.Position,
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	callee := p.parseIdentifier()
	expr.Callee = callee

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		expr.TypeArgs = p.parseTypeArgumentList()
	}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	expr.LParen = p.currentToken.Position
	expr.Arguments = p.parseExpressionList(lexer.RPAREN)
	if p.currentTokenIs(lexer.RPAREN) {
		expr.RParen = p.currentToken.Position
	}

	return expr
}

// parseAwaitExpression parses `await expr`.
func (p *Parser) parseAwaitExpression() ast.Expression {
	expr := &ast.AwaitExpression{
		AwaitPos: p.currentToken.Position,
	}
	p.nextToken()
	expr.Argument = p.parseExpression(UNARY)
	return expr
}

// parseAsyncCallExpression parses the scheduled call form `async f(args)`.
func (p *Parser) parseAsyncCallExpression() ast.Expression {
	asyncPos := p.currentToken.Position
	p.nextToken()

	expr := p.parseExpression(UNARY)
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		p.addError("'async' must be followed by a call expression")
		return expr
	}
	call.Async = true
	call.AsyncPos = asyncPos
	return call
}

// parseEnumShorthandExpression parses the contextual `.Member` form.
func (p *Parser) parseEnumShorthandExpression() ast.Expression {
	dotPos := p.currentToken.Position
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	return &ast.EnumShorthandExpression{
		DotPos: dotPos,
		Member: p.parseIdentifier(),
	}
}

// ============================================================================
// INFIX EXPRESSIONS
// ============================================================================

// parseInfixExpression parses an infix expression (binary operators).
func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.BinaryExpression{
		Left:     left,
		OpPos:    p.currentToken.Position,
		Operator: p.currentToken.Type,
	}

	precedence := p.currentPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)

	return expression
}

// parseAssignmentExpression parses an assignment expression.
func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	expression := &ast.AssignmentExpression{
		Left:     left,
		OpPos:    p.currentToken.Position,
		Operator: p.currentToken.Type,
	}

	p.nextToken()
	expression.Right = p.parseExpression(LOWEST)

	return expression
}

// parseCallExpression parses a call expression.
func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	exp := &ast.CallExpression{
		Callee: fn,
		LParen: p.currentToken.Position,
	}

	exp.Arguments = p.parseExpressionList(lexer.RPAREN)

	if p.currentTokenIs(lexer.RPAREN) {
		exp.RParen = p.currentToken.Position
	}

	return exp
}

// parseMemberExpression parses dot access, including the quoted-name form
// obj."my-field".
func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	exp := &ast.MemberExpression{
		Object: object,
		Dot:    p.currentToken.Position,
	}

	switch p.peekToken.Type {
	case lexer.IDENT:
		p.nextToken()
		exp.Property = p.parseIdentifier()
	case lexer.STRING:
		p.nextToken()
		exp.Property = p.parseStringLiteral()
		exp.Quoted = true
	default:
		p.addErrorf("expected member name after '.', got %s", p.peekToken.Type)
		return nil
	}

	return exp
}

// parseOptionalChainingExpression parses `obj?.prop`.
func (p *Parser) parseOptionalChainingExpression(object ast.Expression) ast.Expression {
	exp := &ast.MemberExpression{
		Object: object,
		Dot:    p.currentToken.Position,
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	exp.Property = p.parseIdentifier()
	return exp
}

// parseIndexExpression parses bracket indexing.
func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.MemberExpression{
		Object:   left,
		LBracket: p.currentToken.Position,
		Computed: true,
	}

	p.nextToken()
	exp.Property = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}

	exp.RBracket = p.currentToken.Position
	return exp
}

// parseTernaryExpression parses a ternary conditional expression.
func (p *Parser) parseTernaryExpression(condition ast.Expression) ast.Expression {
	exp := &ast.ConditionalExpression{
		Test:     condition,
		Question: p.currentToken.Position,
	}

	p.nextToken()
	exp.Consequent = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.COLON) {
		return nil
	}

	exp.Colon = p.currentToken.Position
	p.nextToken()
	exp.Alternate = p.parseExpression(TERNARY)

	return exp
}

// parseRangeExpression parses `a..b` and `a..<b`.
func (p *Parser) parseRangeExpression(start ast.Expression) ast.Expression {
	exp := &ast.RangeExpression{
		Start:     start,
		OpPos:     p.currentToken.Position,
		Exclusive: p.currentToken.Type == lexer.RANGE_EXCL,
	}

	precedence := p.currentPrecedence()
	p.nextToken()
	exp.Stop = p.parseExpression(precedence)

	return exp
}

// parseTypeTestExpression parses `x is T`.
func (p *Parser) parseTypeTestExpression(left ast.Expression) ast.Expression {
	exp := &ast.TypeTestExpression{
		Expr:  left,
		IsPos: p.currentToken.Position,
	}

	p.nextToken()
	exp.Type = p.parseTypeAnnotation()
	if exp.Type == nil {
		return nil
	}

	return exp
}

// parseCastExpression parses `value as Type`.
func (p *Parser) parseCastExpression(left ast.Expression) ast.Expression {
	exp := &ast.CastExpression{
		Expression: left,
		AsPos:      p.currentToken.Position,
	}

	p.nextToken()
	exp.Type = p.parseTypeAnnotation()
	if exp.Type == nil {
		return nil
	}

	return exp
}

// parseNonNullAssertion parses the postfix `value!`.
func (p *Parser) parseNonNullAssertion(left ast.Expression) ast.Expression {
	return &ast.NonNullAssertion{
		Expression: left,
		Bang:       p.currentToken.Position,
	}
}

// parsePostfixExpression parses postfix ++ and --.
func (p *Parser) parsePostfixExpression(left ast.Expression) ast.Expression {
	return &ast.UnaryExpression{
		OpPos:    p.currentToken.Position,
		Operator: p.currentToken.Type,
		Operand:  left,
		Postfix:  true,
	}
}

// parseArrowFunctionExpression handles the single-bare-parameter arrow
// form `x => body`; the parenthesized form is handled by
// parseGroupedExpression.
func (p *Parser) parseArrowFunctionExpression(left ast.Expression) ast.Expression {
	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.addErrorf("invalid arrow function parameter list")
		return nil
	}

	arrow := &ast.ArrowFunctionExpression{
		Parameters: []*ast.Parameter{{Name: ident}},
		Arrow:      p.currentToken.Position,
	}

	p.nextToken()
	arrow.Body = p.parseArrowBody()

	return arrow
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList(end lexer.Token) []ast.Expression {
	var args []ast.Expression

	if p.peekTokenIs(end) {
		p.nextToken()
		return args
	}

	p.nextToken()
	args = append(args, p.parseExpression(LOWEST))

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return args
	}

	return args
}

// parseParameterList parses a function parameter list, leaving the
// current token on the closing parenthesis.
func (p *Parser) parseParameterList() []*ast.Parameter {
	var params []*ast.Parameter

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params
	}

	p.nextToken()

	param := p.parseParameter()
	if param == nil {
		return params
	}
	params = append(params, param)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		param := p.parseParameter()
		if param == nil {
			return params
		}
		params = append(params, param)
	}

	if !p.expectPeek(lexer.RPAREN) {
		return params
	}

	return params
}

// parseParameter parses a function parameter.
func (p *Parser) parseParameter() *ast.Parameter {
	if !p.currentTokenIs(lexer.IDENT) {
		p.addErrorf("expected parameter name, got %s", p.currentToken.Type)
		return nil
	}

	param := &ast.Parameter{
		Name: p.parseIdentifier(),
	}

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		param.TypeAnnotation = p.parseTypeAnnotation()
		if param.TypeAnnotation == nil {
			return nil
		}
	}

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		param.DefaultValue = p.parseExpression(LOWEST)
	}

	return param
}
