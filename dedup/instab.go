package dedup

import (
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"

	"github.com/t7a/autofile/artifact"
	"github.com/t7a/autofile/db"
	"github.com/t7a/autofile/layout"
)

// InstabStore is the default InstabilityHandler.  It keeps the broken
// structure under the instability trunk of the same parent, where a
// later run can look at how it came apart.
type InstabStore struct {
	Set *layout.InstabSet
	Tol db.Tolerances
}

func (s *InstabStore) Unstable(root string, parentLocs db.Locs, cand Candidate, reason *DisconnectedStructureError) (locs db.Locs, err error) {
	defer Return(&err)

	locs, err = allocate(s.Set.Leaf, root, parentLocs, s.Tol.AllocAttempts)
	Ck(err)
	err = s.Set.Geometry.Write(root, locs, cand.Geometry)
	Ck(err)
	err = s.Set.Info.Write(root, locs, artifact.InstabilityInfo{
		Reason:    reason.Error(),
		Energy:    cand.Energy,
		Fragments: reason.Fragments,
	})
	Ck(err)
	err = s.Set.Energy.Write(root, locs, cand.Energy)
	Ck(err)

	log.Debugf("set aside unstable structure as %s", locs)
	return
}
