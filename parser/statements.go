package parser

import (
	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/lexer"
)

// ============================================================================
// STATEMENT PARSING
// ============================================================================

// parseExpressionStatement parses an expression statement.
func (p *Parser) parseExpressionStatement() ast.Statement {
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	stmt := &ast.ExpressionStatement{Expression: expr}
	stmt.Semicolon = p.finishStatement("expression")
	return stmt
}

// parseBlockStatement parses a block statement, draining standalone
// comments and blank runs into trivia statements.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{
		LBrace: p.currentToken.Position,
	}

	p.nextToken()

	for !p.currentTokenIs(lexer.RBRACE) && !p.currentTokenIs(lexer.EOF) {
		block.Body = append(block.Body, p.triviaStatements()...)
		if p.currentTokenIs(lexer.RBRACE) || p.currentTokenIs(lexer.EOF) {
			break
		}
		errsBefore := len(p.errors)
		stmt := p.parseStatement()
		if stmt != nil {
			block.Body = append(block.Body, stmt)
		}
		if stmt == nil && len(p.errors) > errsBefore {
			p.synchronize()
		}
		p.nextToken()
	}
	block.Body = append(block.Body, p.triviaStatements()...)

	if p.currentTokenIs(lexer.RBRACE) {
		block.RBrace = p.currentToken.Position
	} else {
		p.addError("expected '}' to close block")
	}

	return block
}

// parseVariableDeclaration parses a variable declaration (let, const).
func (p *Parser) parseVariableDeclaration() ast.Statement {
	stmt := &ast.VariableDeclaration{
		DeclPos: p.currentToken.Position,
		Kind:    p.currentToken.Type,
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}

	declarator := p.parseVariableDeclarator()
	if declarator != nil {
		stmt.Declarations = append(stmt.Declarations, declarator)
	}

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		declarator := p.parseVariableDeclarator()
		if declarator != nil {
			stmt.Declarations = append(stmt.Declarations, declarator)
		}
	}

	stmt.Semicolon = p.finishStatement("variable declaration")
	return stmt
}

// parseVariableDeclarator parses a single variable declarator.
func (p *Parser) parseVariableDeclarator() *ast.VariableDeclarator {
	declarator := &ast.VariableDeclarator{
		Id: p.parseIdentifier(),
	}

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken() // consume ':'
		p.nextToken() // move to type
		declarator.TypeAnnotation = p.parseTypeAnnotation()
	}

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		declarator.Init = p.parseExpression(LOWEST)
	}

	return declarator
}

// parseCondition parses a parenthesized condition with the object-literal
// form suppressed, so `if (x) { ... }` reads '{' as the body.
func (p *Parser) parseCondition() (lexer.Position, ast.Expression, lexer.Position, bool) {
	if !p.expectPeek(lexer.LPAREN) {
		return lexer.Position{}, nil, lexer.Position{}, false
	}
	lparen := p.currentToken.Position
	p.nextToken()

	saved := p.noObjLiteral
	p.noObjLiteral = true
	test := p.parseExpression(LOWEST)
	p.noObjLiteral = saved

	if !p.expectPeek(lexer.RPAREN) {
		return lparen, test, lexer.Position{}, false
	}
	return lparen, test, p.currentToken.Position, true
}

// parseIfStatement parses an if statement.
func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{
		IfPos: p.currentToken.Position,
	}

	lparen, test, rparen, ok := p.parseCondition()
	if !ok {
		return nil
	}
	stmt.LParen, stmt.Test, stmt.RParen = lparen, test, rparen

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Consequent = p.parseBlockStatement()

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		stmt.ElsePos = p.currentToken.Position

		if p.peekTokenIs(lexer.IF) {
			p.nextToken()
			stmt.Alternate = p.parseIfStatement()
		} else if p.expectPeek(lexer.LBRACE) {
			stmt.Alternate = p.parseBlockStatement()
		}
	}

	return stmt
}

// parseWhileStatement parses a while statement.
func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{
		WhilePos: p.currentToken.Position,
	}

	lparen, test, rparen, ok := p.parseCondition()
	if !ok {
		return nil
	}
	stmt.LParen, stmt.Test, stmt.RParen = lparen, test, rparen

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()

	return stmt
}

// parseForStatement parses either a C-style for loop or a range-based
// for-of loop (`for (const i of a..b)` / `for (const x of xs)`).
func (p *Parser) parseForStatement() ast.Statement {
	forPos := p.currentToken.Position

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	lParen := p.currentToken.Position
	p.nextToken()

	if p.currentTokenIs(lexer.LET) || p.currentTokenIs(lexer.CONST) {
		// Distinguish `for (const x of ...)` from `for (let i = 0; ...)`
		// by the token after the loop variable.
		if p.peekTokenIs(lexer.IDENT) && p.tokenAfterPeek().Type == lexer.OF {
			kind := p.currentToken.Type
			p.nextToken()
			id := p.parseIdentifier()
			p.nextToken() // onto 'of'
			ofPos := p.currentToken.Position
			p.nextToken()

			saved := p.noObjLiteral
			p.noObjLiteral = true
			right := p.parseExpression(LOWEST)
			p.noObjLiteral = saved

			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
			rParen := p.currentToken.Position
			if !p.expectPeek(lexer.LBRACE) {
				return nil
			}
			return &ast.ForOfStatement{
				ForPos: forPos,
				LParen: lParen,
				Kind:   kind,
				Left:   id,
				OfPos:  ofPos,
				Right:  right,
				RParen: rParen,
				Body:   p.parseBlockStatement(),
			}
		}
	}

	var init ast.Statement
	if !p.currentTokenIs(lexer.SEMICOLON) {
		if p.currentTokenIs(lexer.LET) || p.currentTokenIs(lexer.CONST) {
			init = p.parseForInit()
		} else {
			expr := p.parseExpression(LOWEST)
			if expr != nil {
				init = &ast.ExpressionStatement{Expression: expr}
			}
		}
		if !p.expectPeek(lexer.SEMICOLON) {
			return nil
		}
	}
	p.nextToken()

	var test ast.Expression
	if !p.currentTokenIs(lexer.SEMICOLON) {
		test = p.parseExpression(LOWEST)
		if !p.expectPeek(lexer.SEMICOLON) {
			return nil
		}
	}
	p.nextToken()

	var update ast.Expression
	if !p.currentTokenIs(lexer.RPAREN) {
		update = p.parseExpression(LOWEST)
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
	}
	rParen := p.currentToken.Position

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	return &ast.ForStatement{
		ForPos: forPos,
		LParen: lParen,
		Init:   init,
		Test:   test,
		Update: update,
		RParen: rParen,
		Body:   p.parseBlockStatement(),
	}
}

// parseForInit parses the declaration clause of a C-style for loop,
// without consuming the terminating semicolon.
func (p *Parser) parseForInit() ast.Statement {
	stmt := &ast.VariableDeclaration{
		DeclPos: p.currentToken.Position,
		Kind:    p.currentToken.Type,
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	declarator := p.parseVariableDeclarator()
	if declarator != nil {
		stmt.Declarations = append(stmt.Declarations, declarator)
	}
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		declarator := p.parseVariableDeclarator()
		if declarator != nil {
			stmt.Declarations = append(stmt.Declarations, declarator)
		}
	}
	return stmt
}

// tokenAfterPeek returns the token following peekToken without advancing.
func (p *Parser) tokenAfterPeek() lexer.TokenInfo {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return lexer.TokenInfo{Type: lexer.EOF}
}

// parseSwitchStatement parses a switch statement with literal, null and
// numeric-range cases.
func (p *Parser) parseSwitchStatement() ast.Statement {
	stmt := &ast.SwitchStatement{
		SwitchPos: p.currentToken.Position,
	}

	lparen, disc, rparen, ok := p.parseCondition()
	if !ok {
		return nil
	}
	stmt.LParen, stmt.Discriminant, stmt.RParen = lparen, disc, rparen

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.LBrace = p.currentToken.Position
	p.nextToken()

	for !p.currentTokenIs(lexer.RBRACE) && !p.currentTokenIs(lexer.EOF) {
		c := p.parseSwitchCase()
		if c != nil {
			stmt.Cases = append(stmt.Cases, c)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}

	if p.currentTokenIs(lexer.RBRACE) {
		stmt.RBrace = p.currentToken.Position
	}

	return stmt
}

// parseSwitchCase parses one `case v:` / `case a..b:` / `default:` clause
// and its body up to the next case, default, or closing brace.
func (p *Parser) parseSwitchCase() *ast.SwitchCase {
	c := &ast.SwitchCase{CasePos: p.currentToken.Position}

	switch p.currentToken.Type {
	case lexer.CASE:
		p.nextToken()
		c.Tests = append(c.Tests, p.parseExpression(LOWEST))
		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			c.Tests = append(c.Tests, p.parseExpression(LOWEST))
		}
	case lexer.DEFAULT:
		// no tests
	default:
		p.addErrorf("expected 'case' or 'default', got %s", p.currentToken.Type)
		return nil
	}

	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	c.Colon = p.currentToken.Position

	for !p.peekTokenIs(lexer.CASE) && !p.peekTokenIs(lexer.DEFAULT) &&
		!p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
		p.nextToken()
		c.Body = append(c.Body, p.triviaStatements()...)
		if p.currentTokenIs(lexer.CASE) || p.currentTokenIs(lexer.DEFAULT) || p.currentTokenIs(lexer.RBRACE) {
			return c
		}
		stmt := p.parseStatement()
		if stmt != nil {
			c.Body = append(c.Body, stmt)
		}
	}

	return c
}

// parseReturnStatement parses a return statement.
func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{
		ReturnPos: p.currentToken.Position,
	}

	if p.canInsertSemicolon() {
		return stmt
	}
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		stmt.Semicolon = p.currentToken.Position
		return stmt
	}

	p.nextToken()
	stmt.Argument = p.parseExpression(LOWEST)
	stmt.Semicolon = p.finishStatement("return statement")
	return stmt
}

// parseBreakStatement parses a break statement.
func (p *Parser) parseBreakStatement() ast.Statement {
	stmt := &ast.BreakStatement{
		BreakPos: p.currentToken.Position,
	}
	stmt.Semicolon = p.finishStatement("break statement")
	return stmt
}

// parseContinueStatement parses a continue statement.
func (p *Parser) parseContinueStatement() ast.Statement {
	stmt := &ast.ContinueStatement{
		ContinuePos: p.currentToken.Position,
	}
	stmt.Semicolon = p.finishStatement("continue statement")
	return stmt
}

// parseImportDeclaration parses `import { a, b } from "path";`.
func (p *Parser) parseImportDeclaration() ast.Statement {
	stmt := &ast.ImportDeclaration{
		ImportPos: p.currentToken.Position,
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	for !p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		stmt.Names = append(stmt.Names, p.parseIdentifier())
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}

	if !p.expectPeek(lexer.FROM) {
		return nil
	}
	stmt.FromPos = p.currentToken.Position

	if !p.expectPeek(lexer.STRING) {
		return nil
	}
	stmt.Path = p.parseStringLiteral()

	stmt.Semicolon = p.finishStatement("import declaration")
	return stmt
}

// parseFunctionDeclaration parses a function declaration, generic or not.
// The caller has already consumed a leading 'async' when async is true.
func (p *Parser) parseFunctionDeclaration(async bool) ast.Statement {
	fn := &ast.FunctionDeclaration{
		FunctionPos: p.currentToken.Position,
		Async:       async,
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	fn.Name = p.parseIdentifier()

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		fn.TypeParameters = p.parseTypeParameterList()
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

// parseClassDeclaration parses a class declaration. Members are fields and
// methods; there is no extends clause on classes.
func (p *Parser) parseClassDeclaration() ast.Statement {
	class := &ast.ClassDeclaration{
		ClassPos: p.currentToken.Position,
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	class.Name = p.parseIdentifier()

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		class.TypeParameters = p.parseTypeParameterList()
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	class.LBrace = p.currentToken.Position
	p.nextToken()

	for !p.currentTokenIs(lexer.RBRACE) && !p.currentTokenIs(lexer.EOF) {
		member := p.parseClassMember()
		if member != nil {
			class.Body = append(class.Body, member)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}

	if p.currentTokenIs(lexer.RBRACE) {
		class.RBrace = p.currentToken.Position
	}

	return class
}

// classMemberModifiers holds the modifier prefix of a class member.
type classMemberModifiers struct {
	visibility ast.Visibility
	static     bool
	isConst    bool
	readonly   bool
	weak       bool
	async      bool
}

// parseClassMemberModifiers consumes any run of member modifiers, leaving
// the current token on the member name.
func (p *Parser) parseClassMemberModifiers() classMemberModifiers {
	mods := classMemberModifiers{visibility: ast.Public}
	for {
		switch p.currentToken.Type {
		case lexer.PUBLIC:
			mods.visibility = ast.Public
		case lexer.PRIVATE:
			mods.visibility = ast.Private
		case lexer.STATIC:
			mods.static = true
		case lexer.CONST:
			mods.isConst = true
		case lexer.READONLY:
			mods.readonly = true
		case lexer.WEAK:
			mods.weak = true
		case lexer.ASYNC:
			mods.async = true
		default:
			return mods
		}
		p.nextToken()
	}
}

// parseClassMember parses a class member (field or method).
func (p *Parser) parseClassMember() ast.Node {
	mods := p.parseClassMemberModifiers()

	var key ast.Expression
	switch p.currentToken.Type {
	case lexer.IDENT:
		key = p.parseIdentifier()
	case lexer.STRING:
		// Quoted field names permit non-identifier characters.
		key = p.parseStringLiteral()
	case lexer.LBRACKET:
		p.addError("computed property names are not supported in class bodies")
		return nil
	default:
		p.addErrorf("expected member name, got %s", p.currentToken.Type)
		return nil
	}

	if p.peekTokenIs(lexer.LPAREN) {
		return p.parseMethodTail(key, mods)
	}
	return p.parseFieldTail(key, mods)
}

// parseMethodTail parses a method body after its name.
func (p *Parser) parseMethodTail(key ast.Expression, mods classMemberModifiers) ast.Node {
	if mods.isConst || mods.readonly || mods.weak {
		p.addError("const, readonly and weak apply to fields, not methods")
	}

	fn := &ast.FunctionExpression{
		FunctionPos: key.Pos(),
		Async:       mods.async,
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

	return &ast.MethodDefinition{
		Key:        key,
		Value:      fn,
		Visibility: mods.visibility,
		Static:     mods.static,
		Async:      mods.async,
	}
}

// parseFieldTail parses a field declaration after its name.
func (p *Parser) parseFieldTail(key ast.Expression, mods classMemberModifiers) ast.Node {
	if mods.isConst && mods.readonly {
		p.addError("a field cannot be both const and readonly")
	}
	field := &ast.FieldDefinition{
		Key:        key,
		Visibility: mods.visibility,
		Static:     mods.static,
		Const:      mods.isConst,
		Readonly:   mods.readonly,
		Weak:       mods.weak,
	}

	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		if p.currentTokenIs(lexer.WEAK) {
			field.Weak = true
		}
		field.TypeAnnotation = p.parseTypeAnnotation()
	}

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		field.Value = p.parseExpression(LOWEST)
	}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}

	return field
}

// parseExternClassDeclaration parses
// `extern class Name from "header.h" { ... }` or the per-backend map form
// `extern class Name from { cpp: "...", js: "..." } { ... }`.
func (p *Parser) parseExternClassDeclaration() ast.Statement {
	decl := &ast.ExternClassDeclaration{
		ExternPos: p.currentToken.Position,
	}

	if !p.expectPeek(lexer.CLASS) {
		return nil
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	decl.Name = p.parseIdentifier()

	if !p.expectPeek(lexer.FROM) {
		return nil
	}

	switch p.peekToken.Type {
	case lexer.STRING:
		p.nextToken()
		decl.Bindings = []*ast.ExternBinding{{Header: unescape(p.currentToken.Literal)}}
	case lexer.LBRACE:
		p.nextToken()
		for !p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
			if !p.expectPeek(lexer.IDENT) {
				return nil
			}
			backend := p.currentToken.Literal
			if !p.expectPeek(lexer.COLON) {
				return nil
			}
			if !p.expectPeek(lexer.STRING) {
				return nil
			}
			decl.Bindings = append(decl.Bindings, &ast.ExternBinding{
				Backend: backend,
				Header:  unescape(p.currentToken.Literal),
			})
			if p.peekTokenIs(lexer.COMMA) {
				p.nextToken()
			}
		}
		if !p.expectPeek(lexer.RBRACE) {
			return nil
		}
	default:
		p.addErrorf("expected header string or binding map after 'from', got %s", p.peekToken.Type)
		return nil
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	decl.LBrace = p.currentToken.Position
	p.nextToken()

	for !p.currentTokenIs(lexer.RBRACE) && !p.currentTokenIs(lexer.EOF) {
		p.parseExternMember(decl)
		p.nextToken()
	}

	if p.currentTokenIs(lexer.RBRACE) {
		decl.RBrace = p.currentToken.Position
	}

	return decl
}

// parseExternMember parses one field or method signature of an extern
// class. Method bodies are rejected: extern methods live host-side.
func (p *Parser) parseExternMember(decl *ast.ExternClassDeclaration) {
	static := false
	if p.currentTokenIs(lexer.STATIC) {
		static = true
		p.nextToken()
	}

	if !p.currentTokenIs(lexer.IDENT) {
		p.addErrorf("expected extern member name, got %s", p.currentToken.Type)
		return
	}
	key := p.parseIdentifier()

	if p.peekTokenIs(lexer.LPAREN) {
		method := &ast.ExternMethod{Key: key, Static: static}
		p.nextToken()
		method.Parameters = p.parseParameterList()
		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			method.ReturnType = p.parseTypeAnnotation()
		}
		if p.peekTokenIs(lexer.LBRACE) {
			p.addErrorf("extern method '%s' cannot have a body", key.Name)
			p.nextToken()
			p.parseBlockStatement()
		}
		if p.peekTokenIs(lexer.SEMICOLON) {
			p.nextToken()
		}
		decl.Methods = append(decl.Methods, method)
		return
	}

	field := &ast.ExternField{Key: key, Static: static}
	if !p.expectPeek(lexer.COLON) {
		return
	}
	p.nextToken()
	field.TypeAnnotation = p.parseTypeAnnotation()
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	decl.Fields = append(decl.Fields, field)
}

// parseInterfaceDeclaration parses an interface declaration.
func (p *Parser) parseInterfaceDeclaration() ast.Statement {
	iface := &ast.InterfaceDeclaration{
		InterfacePos: p.currentToken.Position,
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	iface.Name = p.parseIdentifier()

	if p.peekTokenIs(lexer.EXTENDS) {
		p.nextToken()
		p.nextToken()
		iface.Extends = append(iface.Extends, p.parseTypeAnnotation())
		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			p.nextToken()
			iface.Extends = append(iface.Extends, p.parseTypeAnnotation())
		}
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	iface.LBrace = p.currentToken.Position
	p.nextToken()

	for !p.currentTokenIs(lexer.RBRACE) && !p.currentTokenIs(lexer.EOF) {
		member := p.parseTypeMember()
		if member != nil {
			iface.Body = append(iface.Body, member)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}

	if p.currentTokenIs(lexer.RBRACE) {
		iface.RBrace = p.currentToken.Position
	}

	return iface
}

// parseTypeMember parses one interface member: a field (`name: T`,
// `name?: T`, `readonly name: T`) or a method signature (`name(...): T`).
func (p *Parser) parseTypeMember() *ast.TypeMember {
	member := &ast.TypeMember{}

	if p.currentTokenIs(lexer.READONLY) {
		member.Readonly = true
		p.nextToken()
	}

	switch p.currentToken.Type {
	case lexer.IDENT:
		member.Key = p.parseIdentifier()
	case lexer.STRING:
		member.Key = p.parseStringLiteral()
	default:
		p.addErrorf("expected member name, got %s", p.currentToken.Type)
		return nil
	}

	if p.peekTokenIs(lexer.QUESTION) {
		p.nextToken()
		member.Optional = true
	}

	if p.peekTokenIs(lexer.LPAREN) {
		// Method signature.
		ft := &ast.FunctionType{}
		p.nextToken()
		ft.LParen = p.currentToken.Position
		ft.Parameters = p.parseParameterList()
		if p.currentTokenIs(lexer.RPAREN) {
			ft.RParen = p.currentToken.Position
		}
		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			ft.ReturnType = p.parseTypeAnnotation()
		} else {
			ft.ReturnType = &ast.BasicType{TypePos: p.currentToken.Position, Kind: lexer.VOID}
		}
		member.Type = ft
	} else {
		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		member.Type = p.parseTypeAnnotation()
	}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}

	return member
}

// parseTypeAliasDeclaration parses a type alias declaration.
func (p *Parser) parseTypeAliasDeclaration() ast.Statement {
	alias := &ast.TypeAliasDeclaration{
		TypePos: p.currentToken.Position,
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	alias.Name = p.parseIdentifier()

	if !p.expectPeek(lexer.ASSIGN) {
		return nil
	}
	alias.Assign = p.currentToken.Position
	p.nextToken()
	alias.Type = p.parseTypeAnnotation()

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}

	return alias
}

// parseEnumDeclaration parses an enum declaration.
func (p *Parser) parseEnumDeclaration() ast.Statement {
	enum := &ast.EnumDeclaration{
		EnumPos: p.currentToken.Position,
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	enum.Name = p.parseIdentifier()

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	enum.LBrace = p.currentToken.Position
	p.nextToken()

	for !p.currentTokenIs(lexer.RBRACE) && !p.currentTokenIs(lexer.EOF) {
		member := p.parseEnumMember()
		if member != nil {
			enum.Members = append(enum.Members, member)
		}
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}

	if p.currentTokenIs(lexer.RBRACE) {
		enum.RBrace = p.currentToken.Position
	}

	return enum
}

// parseEnumMember parses an enum member.
func (p *Parser) parseEnumMember() *ast.EnumMember {
	if !p.currentTokenIs(lexer.IDENT) {
		p.addErrorf("expected enum member name, got %s", p.currentToken.Type)
		return nil
	}

	member := &ast.EnumMember{
		Name: p.parseIdentifier(),
	}

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		member.Value = p.parseExpression(LOWEST)
	}

	return member
}
