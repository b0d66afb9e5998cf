// Package all registers every built-in provider adapter. Import it for side
// effects from binary entrypoints.
package all

import (
	_ "github.com/blockalphadev/dejavu-sub004/internal/providers/sportsdb"
	_ "github.com/blockalphadev/dejavu-sub004/internal/providers/sportsio"
)
