package embedded

import (
	_ "embed"
)

// Embed all prompt data files
//
//go:embed data/system_prompt.txt
var SystemPromptTxt []byte

//go:embed data/design_system.txt
var DesignSystemTxt []byte

//go:embed data/output_rules.txt
var OutputRulesTxt []byte
