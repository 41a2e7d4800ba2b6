package embed_data

import _ "embed"

//go:embed queries/go.json
var GoQuery []byte

//go:embed queries/python.json
var PythonQuery []byte

//go:embed queries/javascript.json
var JavascriptQuery []byte

//go:embed queries/typescript.json
var TypescriptQuery []byte

//go:embed queries/java.json
var JavaQuery []byte

//go:embed queries/csharp.json
var CSharpQuery []byte

//go:embed prompts/code_review_prompt.tmpl
var CodeReviewPrompt []byte

//go:embed prompts/cursor_rules_prompt.tmpl
var CursorRulesPrompt []byte
