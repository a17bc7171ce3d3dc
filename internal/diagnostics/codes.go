package diagnostics

// Code is a stable integer diagnostic code. Values never change meaning
// once shipped; new diagnostics are appended, never inserted.
type Code int

// Error codes, grouped loosely by phase.
const (
	UndefinedType Code = iota + 1
	Redeclaration
	RedefineType
	VoidTypeCannotBeParameter
	ParameterTypeNotMatch
	ParameterLengthNotMatch
	ReturnTypeMismatch
	FunctionMustHaveReturn
	IfConditionMustBeBool
	WhileConditionMustBeBool
	ForConditionMustBeBool
	BreakMustBeInLoop
	ContinueMustBeInLoop
	InvalidUnaryExpression
	UnrecognizedBinOperator
	AssignConst
	RefConst
	IllegalSelfRecursion
	GenericCannotBeInfer
	GenericParamLenMismatch
	MethodNotInTrait
	MethodNotInImpl
	TraitMethodShallNotHaveModifier
	UnresolvedModule
	ExpectType
	ExpectValue
	StructFieldNotFound
	ArrayIndexOutOfBounds
	FunctionNotFound
	NotAFunction
	TypeMismatch

	// completionSentinel is not a user-facing diagnostic: it is how an
	// emitter that discovers it must answer a completion request
	// short-circuits the rest of the emission.
	completionSentinel
)

// Warning codes.
const (
	UnreachableStatement Code = iota + 1000
	UnusedVariable
	UnusedFunction
)

// names gives each error Code a stable string identifier, used in
// human-readable and JSON rendering.
var names = map[Code]string{
	UndefinedType:                   "UNDEFINED_TYPE",
	Redeclaration:                   "REDECLARATION",
	RedefineType:                    "REDEFINE_TYPE",
	VoidTypeCannotBeParameter:       "VOID_TYPE_CANNOT_BE_PARAMETER",
	ParameterTypeNotMatch:           "PARAMETER_TYPE_NOT_MATCH",
	ParameterLengthNotMatch:         "PARAMETER_LENGTH_NOT_MATCH",
	ReturnTypeMismatch:              "RETURN_TYPE_MISMATCH",
	FunctionMustHaveReturn:          "FUNCTION_MUST_HAVE_RETURN",
	IfConditionMustBeBool:           "IF_CONDITION_MUST_BE_BOOL",
	WhileConditionMustBeBool:        "WHILE_CONDITION_MUST_BE_BOOL",
	ForConditionMustBeBool:          "FOR_CONDITION_MUST_BE_BOOL",
	BreakMustBeInLoop:               "BREAK_MUST_BE_IN_LOOP",
	ContinueMustBeInLoop:            "CONTINUE_MUST_BE_IN_LOOP",
	InvalidUnaryExpression:          "INVALID_UNARY_EXPRESSION",
	UnrecognizedBinOperator:         "UNRECOGNIZED_BIN_OPERATOR",
	AssignConst:                     "ASSIGN_CONST",
	RefConst:                        "REF_CONST",
	IllegalSelfRecursion:            "ILLEGAL_SELF_RECURSION",
	GenericCannotBeInfer:            "GENERIC_CANNOT_BE_INFER",
	GenericParamLenMismatch:         "GENERIC_PARAM_LEN_MISMATCH",
	MethodNotInTrait:                "METHOD_NOT_IN_TRAIT",
	MethodNotInImpl:                 "METHOD_NOT_IN_IMPL",
	TraitMethodShallNotHaveModifier: "TRAIT_METHOD_SHALL_NOT_HAVE_MODIFIER",
	UnresolvedModule:                "UNRESOLVED_MODULE",
	ExpectType:                      "EXPECT_TYPE",
	ExpectValue:                     "EXPECT_VALUE",
	StructFieldNotFound:             "STRUCT_FIELD_NOT_FOUND",
	ArrayIndexOutOfBounds:           "ARRAY_INDEX_OUT_OF_BOUNDS",
	FunctionNotFound:                "FUNCTION_NOT_FOUND",
	NotAFunction:                    "NOT_A_FUNCTION",
	TypeMismatch:                    "TYPE_MISMATCH",
	completionSentinel:              "COMPLETION",

	UnreachableStatement: "UNREACHABLE_STATEMENT",
	UnusedVariable:       "UNUSED_VARIABLE",
	UnusedFunction:       "UNUSED_FUNCTION",
}

// templates gives each code its message template. Templates with "%s"
// take one argument via Diagnostic.Args.
var templates = map[Code]string{
	UndefinedType:                   "undefined type %q",
	Redeclaration:                   "%q is already declared in this scope",
	RedefineType:                    "type %q is already defined",
	VoidTypeCannotBeParameter:       "void type cannot be used as a parameter",
	ParameterTypeNotMatch:           "argument type does not match parameter type",
	ParameterLengthNotMatch:         "expected %s arguments",
	ReturnTypeMismatch:              "return type does not match function's declared return type",
	FunctionMustHaveReturn:          "function must return on every path",
	IfConditionMustBeBool:           "if condition must be bool",
	WhileConditionMustBeBool:        "while condition must be bool",
	ForConditionMustBeBool:          "for condition must be bool",
	BreakMustBeInLoop:               "break must be inside a loop",
	ContinueMustBeInLoop:            "continue must be inside a loop",
	InvalidUnaryExpression:          "invalid unary expression",
	UnrecognizedBinOperator:         "unrecognized binary operator",
	AssignConst:                     "cannot assign to a const",
	RefConst:                        "cannot take a reference to a const",
	IllegalSelfRecursion:            "struct recursively contains itself without indirection",
	GenericCannotBeInfer:            "generic type parameter %q could not be inferred",
	GenericParamLenMismatch:         "wrong number of explicit generic parameters",
	MethodNotInTrait:                "method %q is not declared by the implemented trait",
	MethodNotInImpl:                 "trait method %q has no implementation",
	TraitMethodShallNotHaveModifier: "trait method declarations must not have a body",
	UnresolvedModule:                "unresolved module %q",
	ExpectType:                      "expected a type here",
	ExpectValue:                     "expected a value here",
	StructFieldNotFound:             "no field %q on this struct",
	ArrayIndexOutOfBounds:           "array index out of bounds",
	FunctionNotFound:                "function %q not found",
	NotAFunction:                    "%q is not callable",
	TypeMismatch:                    "type mismatch",
	completionSentinel:              "completion requested",

	UnreachableStatement: "unreachable statement",
	UnusedVariable:       "unused variable %q",
	UnusedFunction:       "unused function %q",
}

// String returns the stable diagnostic name, e.g. "UNDEFINED_TYPE".
func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return "UNKNOWN_CODE"
}

// Template returns the message template for c.
func (c Code) Template() string {
	if t, ok := templates[c]; ok {
		return t
	}
	return c.String()
}

// IsCompletionSentinel reports whether c is the internal marker used to
// unwind an emission after publishing completions.
func (c Code) IsCompletionSentinel() bool { return c == completionSentinel }

// Completion is the sentinel code used by emitters that must abort the
// current expression once they've published completion items.
const Completion = completionSentinel
