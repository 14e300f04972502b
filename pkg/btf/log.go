package btf

import "github.com/sirupsen/logrus"

// defaultLogger is used by any Spec constructed without WithLogger. Callers
// embedding gobtf in a larger application typically override this via
// WithLogger to route through their own logrus instance instead.
var defaultLogger = logrus.StandardLogger()
