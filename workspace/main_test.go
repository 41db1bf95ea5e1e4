package workspace

import (
	"testing"

	"go.uber.org/goleak"

	"github.com/dhamidi/gfcedit/express"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testSchema = `ENTITY Element;
END_ENTITY;
ENTITY Wall;
  SUBTYPE OF (Element);
  Name : STRING;
  Height : REAL;
END_ENTITY;
ENTITY ExteriorWall;
  SUBTYPE OF (Wall);
END_ENTITY;
`

// testDoc has a reference from #2 to #1, an unknown class and an
// unterminated last instance.
const testDoc = "#1=WALL('north',3.0);\n#2=EXTERIORWALL('east',#1);\n#3=WALLL('typo');\n#4=WALL('open'\n"

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w := New(t.TempDir(), nil)
	w.SetSchema("test.exp", express.ParseString(testSchema))
	return w
}
