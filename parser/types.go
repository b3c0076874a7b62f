package parser

import (
	"github.com/tgc-lang/tgc/ast"
	"github.com/tgc-lang/tgc/lexer"
)

// ============================================================================
// TYPE PARSING
// ============================================================================

// parseTypeAnnotation parses a type annotation.
func (p *Parser) parseTypeAnnotation() ast.TypeNode {
	return p.parseUnionType()
}

// parseUnionType parses a union type (A | B | null).
func (p *Parser) parseUnionType() ast.TypeNode {
	left := p.parsePrimaryType()
	if left == nil {
		return nil
	}

	if !p.peekTokenIs(lexer.BIT_OR) {
		return left
	}

	union := &ast.UnionType{
		Types: []ast.TypeNode{left},
	}

	for p.peekTokenIs(lexer.BIT_OR) {
		p.nextToken() // consume '|'
		p.nextToken()
		right := p.parsePrimaryType()
		if right == nil {
			return nil
		}
		union.Types = append(union.Types, right)
	}

	return union
}

// parsePrimaryType parses a primary type with its []/? suffixes.
func (p *Parser) parsePrimaryType() ast.TypeNode {
	var baseType ast.TypeNode

	switch p.currentToken.Type {
	case lexer.INT_T, lexer.FLOAT_T, lexer.DOUBLE_T, lexer.CHAR_T,
		lexer.BOOL_T, lexer.STRING_T, lexer.VOID, lexer.NULL:
		baseType = &ast.BasicType{
			TypePos: p.currentToken.Position,
			Kind:    p.currentToken.Type,
		}
	case lexer.IDENT:
		baseType = p.parseTypeReference()
	case lexer.WEAK:
		weakPos := p.currentToken.Position
		p.nextToken()
		inner := p.parsePrimaryType()
		if inner == nil {
			return nil
		}
		baseType = &ast.WeakType{WeakPos: weakPos, Inner: inner}
	case lexer.LPAREN:
		baseType = p.parseFunctionOrGroupedType()
	default:
		p.addErrorf("unexpected token in type: %s", p.currentToken.Type)
		return nil
	}

	for baseType != nil {
		switch {
		case p.peekTokenIs(lexer.LBRACKET):
			p.nextToken()
			lbracket := p.currentToken.Position
			if !p.expectPeek(lexer.RBRACKET) {
				return nil
			}
			baseType = &ast.ArrayType{
				ElementType: baseType,
				LBracket:    lbracket,
				RBracket:    p.currentToken.Position,
			}
		case p.peekTokenIs(lexer.QUESTION):
			p.nextToken()
			baseType = &ast.OptionalType{
				Inner:    baseType,
				Question: p.currentToken.Position,
			}
		default:
			return baseType
		}
	}

	return baseType
}

// parseTypeReference parses a named type reference with optional generic
// arguments (MyClass, Array<T>, Map<K, V>, Set<T>).
func (p *Parser) parseTypeReference() ast.TypeNode {
	ref := &ast.TypeReference{
		Name: p.parseIdentifier(),
	}

	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		ref.TypeArgs = p.parseTypeArgumentList()
		if ref.TypeArgs == nil {
			return nil
		}
	}

	return ref
}

// parseFunctionOrGroupedType parses `(params) => ret` or a parenthesized
// type; the function-type reading is attempted first and rewound when no
// '=>' follows.
func (p *Parser) parseFunctionOrGroupedType() ast.TypeNode {
	lparen := p.currentToken.Position
	pos, cur, peek, errs := p.mark()

	fn := &ast.FunctionType{LParen: lparen}
	fn.Parameters = p.parseParameterList()
	if p.currentTokenIs(lexer.RPAREN) && p.peekTokenIs(lexer.ARROW) {
		fn.RParen = p.currentToken.Position
		p.nextToken()
		fn.Arrow = p.currentToken.Position
		p.nextToken()
		fn.ReturnType = p.parseTypeAnnotation()
		if fn.ReturnType == nil {
			return nil
		}
		return fn
	}

	p.rewind(pos, cur, peek, errs)
	p.nextToken()
	typ := p.parseTypeAnnotation()
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return typ
}

// parseTypeArgumentList parses `T, U, ...>` with the current token on '<',
// leaving the current token on '>'.
func (p *Parser) parseTypeArgumentList() []ast.TypeNode {
	var args []ast.TypeNode

	if p.peekTokenIs(lexer.GT) {
		p.addError("empty type argument list")
		p.nextToken()
		return nil
	}

	p.nextToken()
	arg := p.parseTypeAnnotation()
	if arg == nil {
		return nil
	}
	args = append(args, arg)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		arg := p.parseTypeAnnotation()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}

	if !p.expectPeek(lexer.GT) {
		return nil
	}

	return args
}

// parseTypeParameterList parses `<T, U>` with the current token on '<',
// leaving the current token on '>'.
func (p *Parser) parseTypeParameterList() []*ast.TypeParameter {
	var params []*ast.TypeParameter

	if p.peekTokenIs(lexer.GT) {
		p.addError("empty type parameter list")
		p.nextToken()
		return nil
	}

	p.nextToken()
	if !p.currentTokenIs(lexer.IDENT) {
		p.addErrorf("expected type parameter name, got %s", p.currentToken.Type)
		return nil
	}
	params = append(params, &ast.TypeParameter{Name: p.parseIdentifier()})

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		params = append(params, &ast.TypeParameter{Name: p.parseIdentifier()})
	}

	if !p.expectPeek(lexer.GT) {
		return nil
	}

	return params
}
