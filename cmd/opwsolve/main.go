// Package main provides the opwsolve CLI, a small front end over the kinematics
// solver for checking poses and toolpaths from the command line.
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/robosculpt/kinematics/opw"
	"github.com/robosculpt/kinematics/spatialmath"
	"github.com/robosculpt/kinematics/utils"
)

// waypoint is one Cartesian target in the wire format shared with the slicing
// pipeline: position in millimeters and KUKA A/B/C angles (ZYX Euler) in degrees.
type waypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

func (w waypoint) pose() (*spatialmath.Pose, error) {
	rot, err := spatialmath.NewRotationMatrixFromEuler(
		spatialmath.OrderZYX,
		utils.DegToRad(w.A),
		utils.DegToRad(w.B),
		utils.DegToRad(w.C),
	)
	if err != nil {
		return nil, err
	}
	return spatialmath.NewPose(r3.Vector{X: w.X, Y: w.Y, Z: w.Z}, rot), nil
}

func poseToWaypoint(p *spatialmath.Pose) (waypoint, error) {
	a, b, c, err := p.Orientation().EulerAngles(spatialmath.OrderZYX)
	if err != nil {
		return waypoint{}, err
	}
	pt := p.Point()
	return waypoint{
		X: pt.X, Y: pt.Y, Z: pt.Z,
		A: utils.RadToDeg(a), B: utils.RadToDeg(b), C: utils.RadToDeg(c),
	}, nil
}

func newModel(c *cli.Context, logger golog.Logger) (*opw.Model, error) {
	path := c.String("model")
	if path == "" {
		return opw.NewKukaKR340R3300(logger)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model file")
	}
	name, params, err := opw.UnmarshalParametersJSON(data)
	if err != nil {
		return nil, err
	}
	return opw.NewModel(name, params, logger)
}

func main() {
	logger := golog.NewDevelopmentLogger("opwsolve")

	app := &cli.App{
		Name:  "opwsolve",
		Usage: "closed-form kinematics for six-axis ortho-parallel manipulators",
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:  "model",
				Usage: "path to a model parameters JSON file (default: built-in KUKA KR 340 R3300)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "pose",
				Usage:     "forward kinematics: compute the tool pose for six joint angles in degrees",
				ArgsUsage: "A1 A2 A3 A4 A5 A6",
				Action: func(c *cli.Context) error {
					if c.NArg() != opw.NumJoints {
						return errors.Errorf("expected %d joint angles, got %d", opw.NumJoints, c.NArg())
					}
					var jp opw.JointPositions
					for i := 0; i < opw.NumJoints; i++ {
						v, err := strconv.ParseFloat(c.Args().Get(i), 64)
						if err != nil {
							return errors.Wrapf(err, "joint A%d", i+1)
						}
						jp[i] = v
					}
					model, err := newModel(c, logger)
					if err != nil {
						return err
					}
					pose, ok := model.ForwardKinematics(jp)
					if !ok {
						return errors.Errorf("joint angles %s are invalid for %s", jp, model.Name())
					}
					wp, err := poseToWaypoint(pose)
					if err != nil {
						return err
					}
					return printJSON(c.App.Writer, wp)
				},
			},
			{
				Name:      "solve",
				Usage:     "inverse kinematics: solve every waypoint of a toolpath JSON file (or stdin)",
				ArgsUsage: "[toolpath.json]",
				Action: func(c *cli.Context) error {
					var in io.Reader = os.Stdin
					if c.NArg() > 0 {
						f, err := os.Open(c.Args().First())
						if err != nil {
							return errors.Wrap(err, "failed to open toolpath file")
						}
						defer f.Close()
						in = f
					}
					var waypoints []waypoint
					if err := json.NewDecoder(in).Decode(&waypoints); err != nil {
						return errors.Wrap(err, "failed to parse toolpath")
					}
					poses := make([]*spatialmath.Pose, 0, len(waypoints))
					for i, wp := range waypoints {
						pose, err := wp.pose()
						if err != nil {
							return errors.Wrapf(err, "waypoint %d", i)
						}
						poses = append(poses, pose)
					}
					model, err := newModel(c, logger)
					if err != nil {
						return err
					}
					solutions, err := model.SolveToolpath(c.Context, poses)
					if err != nil {
						return err
					}
					for i, sols := range solutions {
						if len(sols) == 0 {
							logger.Warnf("waypoint %d is unreachable", i)
						}
					}
					return printJSON(c.App.Writer, solutions)
				},
			},
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		logger.Fatal(err)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
