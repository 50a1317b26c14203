package utils

import (
	"context"
	"sync/atomic"
	"testing"

	"go.viam.com/test"
)

func TestGroupWorkParallel(t *testing.T) {
	for _, totalSize := range []int{0, 1, 3, ParallelFactor, ParallelFactor*3 + 1} {
		hits := make([]int64, totalSize)
		var groups int32
		err := GroupWorkParallel(
			context.Background(),
			totalSize,
			func(groupSize int) {
				atomic.StoreInt32(&groups, int32(groupSize))
			},
			func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc) {
				return func(memberNum, workNum int) {
					atomic.AddInt64(&hits[workNum], 1)
				}, nil
			},
		)
		test.That(t, err, test.ShouldBeNil)
		if totalSize == 0 {
			test.That(t, groups, test.ShouldEqual, 0)
			continue
		}
		test.That(t, groups, test.ShouldBeGreaterThan, 0)
		test.That(t, int(groups), test.ShouldBeLessThanOrEqualTo, totalSize)
		for workNum := range hits {
			test.That(t, hits[workNum], test.ShouldEqual, int64(1))
		}
	}
}

func TestGroupWorkParallelDone(t *testing.T) {
	var done int32
	err := GroupWorkParallel(
		context.Background(),
		10,
		func(groupSize int) {},
		func(groupNum, groupSize, from, to int) (MemberWorkFunc, GroupWorkDoneFunc) {
			return nil, func() {
				atomic.AddInt32(&done, 1)
			}
		},
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, done, test.ShouldBeGreaterThan, 0)
}
