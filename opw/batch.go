package opw

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/robosculpt/kinematics/spatialmath"
	"github.com/robosculpt/kinematics/utils"
)

// SolveToolpath runs the inverse solver over every waypoint of a toolpath in
// parallel. Results come back in input order, one solution set per waypoint; a
// waypoint with no reachable configuration yields an empty set, which is not an
// error. Malformed waypoints are collected and reported together, with their
// indices, after all waypoints have been attempted.
func (m *Model) SolveToolpath(ctx context.Context, waypoints []*spatialmath.Pose) ([][]JointPositions, error) {
	solutions := make([][]JointPositions, len(waypoints))
	errs := make([]error, len(waypoints))

	if err := utils.GroupWorkParallel(
		ctx,
		len(waypoints),
		func(groupSize int) {},
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, workNum int) {
				sols, err := m.InverseKinematics(waypoints[workNum])
				if err != nil {
					errs[workNum] = errors.Wrapf(err, "waypoint %d", workNum)
					return
				}
				solutions[workNum] = sols
			}, nil
		},
	); err != nil {
		return nil, err
	}

	var err error
	for _, e := range errs {
		err = multierr.Combine(err, e)
	}
	if err != nil {
		return nil, err
	}
	return solutions, nil
}
