package intersection

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "intersection")
