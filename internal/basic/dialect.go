/*
 * TSBTAPE - Per-dialect statement, operator, and function name tables.
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package basic

import "github.com/rcornwell/tsbtape/internal/tsbconfig"

// accessStatements names the 64 Access statement codes (the op field of
// the first token word of a statement). Entries starting with "?" are
// unused/reserved codes and print literally, matching the on-tape
// behavior for a corrupted or future-dialect statement code.
var accessStatements = [64]string{
	"?00", "?01", "?02", "?03", "?04", "?05", "?06", "?07",
	"?10", "?11", "?12", "?13", "?14", "?15", "?16", "?17",
	"?20", "?21", "?22", "?23", "?24", "?25", "?26", "?27",
	"?30", "?31", "SYSTEM", "CONVERT", "LOCK", "UNLOCK", "CREATE", "PURGE",
	"ADVANCE", "UPDATE", "ASSIGN", "LINPUT", "IMAGE", "COM", "LET", "DIM",
	"DEF", "REM", "GOTO", "IF", "FOR", "NEXT", "GOSUB", "RETURN",
	"END", "STOP", "DATA", "INPUT", "READ", "PRINT", "RESTORE", "MAT",
	"FILES", "CHAIN", "ENTER", " ", "?74", "?75", "?76", "?77",
}

// accessOperators names the 64 Access operator/sub-operator codes, used
// for every token after the first in a statement.
var accessOperators = [64]string{
	"", "\"", ",", ";", "#", "?05", "?06", "?07",
	")", "]", "[", "(", "+", "-", ",", "=",
	"+", "-", "*", "/", "^", ">", "<", "#",
	"=", "?31", "AND", "OR", "MIN", "MAX", "<>", ">=",
	"<=", "NOT", "**", "USING", "PR", "WR", "NR", "ERROR",
	"?50", "?51", "?52", "?53", "?54", "?55", "?56", "?57",
	"END", "?61", "?62", "INPUT", "READ", "PRINT", "?66", "?67",
	"?70", "?71", "?72", "?73", "OF", "THEN", "TO", "STEP",
}

// tsb2000FOps names 2000F's single combined statement/operator table:
// pre-Access TSB reuses the same 64-entry table for both the leading
// statement code and every following operator token.
var tsb2000FOps = [64]string{
	"", "\"", ",", ";", "#", "?05", "?06", "?07",
	")", "]", "[", "(", "+", "-", ",", "=",
	"+", "-", "*", "/", "^", ">", "<", "#",
	"=", "?31", "AND", "OR", "MIN", "MAX", "<>", ">=",
	"<=", "NOT", "ASSIGN", "USING", "IMAGE", "COM", "LET", "DIM",
	"DEF", "REM", "GOTO", "IF", "FOR", "NEXT", "GOSUB", "RETURN",
	"END", "STOP", "DATA", "INPUT", "READ", "PRINT", "RESTORE", "MAT",
	"FILES", "CHAIN", "ENTER", " ", "OF", "THEN", "TO", "STEP",
}

// Statement op codes referenced directly by the decoder/transducer for
// special-cased bodies or DIM/COM int-operand handling.
const (
	OpFiles = 070
	OpRem   = 051
	OpImage = 044
	OpCom   = 045
	OpDim   = 047
	OpUsing = 043
)

// builtinFunctions packs the 32 three-letter built-in function names
// referenced by a kind=1,type=017 token, indexed by the token's name
// field (bits 4-8), grounded on tsbprog.c's print_other_operand. The
// table is in Access slot order and serves both dialects: the decoder
// moves 2000F's ZER..TRN (024-030) up 7 slots before the lookup, and any
// other 2000F slot prints its Access name.
const builtinFunctions = "CTLTABLINSPATANATNEXPLOGABSSQRINTRNDSGNLENTYPTIM" +
	"SINCOSBRKITMRECNUMPOSCHRUPSSYS?32ZERCONIDNINVTRN"

// builtinFunctionName returns the 3-letter name for built-in function
// index n (0-31), plus whether the name is conventionally rendered as a
// string function ($-suffixed): CHR$ and UPS$.
func builtinFunctionName(n int) (string, bool) {
	if n < 0 || 3*(n+1) > len(builtinFunctions) {
		return "", false
	}
	name := builtinFunctions[3*n : 3*n+3]
	dollar := n == 027 || n == 030
	return name, dollar
}

// StatementNames returns the statement-code name table for dialect.
func StatementNames(d tsbconfig.Dialect) [64]string {
	if d == tsbconfig.DialectAccess {
		return accessStatements
	}
	return tsb2000FOps
}

// OperatorNames returns the operator name table for dialect.
func OperatorNames(d tsbconfig.Dialect) [64]string {
	if d == tsbconfig.DialectAccess {
		return accessOperators
	}
	return tsb2000FOps
}
