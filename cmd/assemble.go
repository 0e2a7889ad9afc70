/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"sync"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/notargets/gorans/InputParameters"
	"github.com/notargets/gorans/geometry"
	"github.com/notargets/gorans/model_problems/NavierStokes"
	"github.com/notargets/gorans/readfiles"
	"github.com/notargets/gorans/utils"
)

type AssembleRun struct {
	GridFile   string
	InputFile  string
	Partitions int
	Passes     int
	WallLayer  float64
	Profile    string
	Perf       bool
}

// AssembleCmd represents the assemble command
var AssembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble the viscous wall and turbulence residuals of a freestream case",
	Long: `
Reads an SU2 mesh and a YAML input deck, initializes the freestream state and
runs the assembly passes, printing the reduced diagnostics of each pass`,
	Run: func(cmd *cobra.Command, args []string) {
		ar := &AssembleRun{}
		ar.GridFile, _ = cmd.Flags().GetString("gridFile")
		ar.InputFile, _ = cmd.Flags().GetString("inputConditionsFile")
		ar.Partitions, _ = cmd.Flags().GetInt("partitions")
		ar.Passes, _ = cmd.Flags().GetInt("passes")
		ar.WallLayer, _ = cmd.Flags().GetFloat64("wallLayer")
		ar.Profile, _ = cmd.Flags().GetString("profile")
		ar.Perf, _ = cmd.Flags().GetBool("perf")
		ip, err := processAssembleInput(ar)
		if err != nil {
			logrus.Fatal(err)
		}
		ip.Print()
		switch ar.Profile {
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		}
		run := func() error { return RunAssemble(ar, ip, os.Stdout) }
		if ar.Perf {
			err = measureInstructions(run)
		} else {
			err = run()
		}
		if err != nil {
			logrus.Fatal(err)
		}
	},
}

const exampleDeck = `
########################################
Title: "Flat plate"
TurbulenceModel: sst
FreestreamVelocity: [69.4, 0]
FreestreamTemperature: 300
Markers:
  wall:
    Kind: isothermal
    Temperature: 310
    Monitoring: true
########################################
`

func processAssembleInput(ar *AssembleRun) (ip *InputParameters.RANSParameters, err error) {
	if len(ar.GridFile) == 0 {
		err = multierr.Append(err, fmt.Errorf("must supply a grid file (-F, --gridFile) in SU2 format"))
	}
	if len(ar.InputFile) == 0 {
		err = multierr.Append(err, fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile), example:%s",
			exampleDeck))
	}
	switch ar.Profile {
	case "", "cpu", "mem":
	default:
		err = multierr.Append(err, fmt.Errorf("profile must be one of cpu, mem, have [%s]", ar.Profile))
	}
	if ar.Partitions < 1 || ar.Passes < 1 {
		err = multierr.Append(err, fmt.Errorf("partitions and passes must be at least 1, have %d, %d",
			ar.Partitions, ar.Passes))
	}
	if err != nil {
		return
	}
	var data []byte
	if data, err = ioutil.ReadFile(ar.InputFile); err != nil {
		return
	}
	ip = &InputParameters.RANSParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ar.InputFile, err)
	}
	return
}

func init() {
	rootCmd.AddCommand(AssembleCmd)
	AssembleCmd.Flags().StringP("gridFile", "F", "", "Grid file to read in SU2 (.su2) format")
	AssembleCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- freestream state\n\t- turbulence model\n\t- wall markers")
	AssembleCmd.Flags().IntP("partitions", "p", 1, "number of in-process partitions sharing the reductions")
	AssembleCmd.Flags().IntP("passes", "n", 1, "number of assembly passes")
	AssembleCmd.Flags().Float64("wallLayer", 0, "thickness of the initial linear velocity layer at the walls, 0 is uniform flow")
	AssembleCmd.Flags().String("profile", "", "write a cpu or mem profile to the working directory")
	AssembleCmd.Flags().Bool("perf", false, "report the CPU instruction count of the assembly (linux only)")
}

// wallTags lists the configured viscous wall markers, the wall distance is measured to them
func wallTags(ip *InputParameters.RANSParameters) (tags []string) {
	for _, tag := range ip.MarkerTags() {
		if mp, err := ip.GetMarker(tag); err == nil && mp.Kind.IsViscousWall() {
			tags = append(tags, tag)
		}
	}
	return
}

// RunAssemble runs the assembly on ar.Partitions copies of the mesh. Points are
// dealt round robin to the partitions, the other copies hold them as halos.
func RunAssemble(ar *AssembleRun, ip *InputParameters.RANSParameters, out io.Writer) (err error) {
	su2, err := readfiles.ReadSU2(ar.GridFile, logrus.IsLevelEnabled(logrus.DebugLevel))
	if err != nil {
		return
	}
	var (
		NP     = ar.Partitions
		comm   = utils.NewReduceComm(NP)
		solver = make([]*NavierStokes.NSSolver, NP)
		diags  = make([][]NavierStokes.Diagnostics, NP)
		wg     sync.WaitGroup
	)
	for n := 0; n < NP; n++ {
		var mesh *geometry.DualMesh
		if mesh, err = geometry.NewDualMesh(su2); err != nil {
			return
		}
		mesh.ComputeWallDistance(su2, wallTags(ip))
		for iPoint := 0; iPoint < mesh.NPoint(); iPoint++ {
			mesh.SetDomain(iPoint, iPoint%NP == n)
		}
		if solver[n], err = NavierStokes.NewNSSolver(mesh, ip, comm.Rank(n)); err != nil {
			return
		}
		solver[n].SetLogger(logrus.WithField("rank", n))
		solver[n].InitializeWallProfile(ar.WallLayer)
	}
	logrus.Debugf("allocated %d partitions: %s", NP, utils.GetMemUsage())
	for n := 0; n < NP; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for pass := 0; pass < ar.Passes; pass++ {
				diags[n] = append(diags[n], solver[n].Assemble())
			}
		}(n)
	}
	wg.Wait()
	logrus.Debugf("assembly done: %s", utils.GetMemUsage())
	fmt.Fprintf(out, "flow Jacobian nnz %d\n", solver[0].Jacobian.ToCSR().NNZ())
	if turb := solver[0].Turb; turb != nil {
		fmt.Fprintf(out, "turbulence Jacobian nnz %d\n", turb.Jacobian.ToCSR().NNZ())
	}
	printWallSummary(out, solver, wallTags(ip))
	for pass, d := range diags[0] {
		fmt.Fprintf(out, "pass %d: nonPhysical %d, wall function not converged %d, small y+ %d\n",
			pass, d.NonPhysical, d.WallFunction.NotConverged, d.WallFunction.SmallYPlus)
		fmt.Fprintf(out, "\tresidual RMS %8.5g\n", d.ResidualRMS)
		if len(d.TurbResidualRMS) != 0 {
			fmt.Fprintf(out, "\tturbulence residual RMS %8.5g\n", d.TurbResidualRMS)
		}
		fmt.Fprintf(out, "\tbuffet metric %8.5g, combined objective %8.5g\n", d.BuffetMetric, d.ComboObjective)
	}
	return
}

// printWallSummary reports the extremes of the wall shear stress and y+ over the
// wall vertices, each vertex taken from the partition that owns it
func printWallSummary(out io.Writer, solver []*NavierStokes.NSSolver, tags []string) {
	for _, tag := range tags {
		var maxTau, maxYPlus float64
		for _, ns := range solver {
			iMarker, ok := ns.Geom.MarkerIndex(tag)
			if !ok {
				continue
			}
			ms := ns.Markers[iMarker]
			for iVertex := 0; iVertex < ns.Geom.NVertex(iMarker); iVertex++ {
				iPoint := ns.Geom.VertexNode(iMarker, iVertex)
				if !ns.Geom.IsDomain(iPoint) {
					continue
				}
				maxTau = math.Max(maxTau, ns.Nodes.GetFlowFunction(iPoint, NavierStokes.WallShearStress))
				maxYPlus = math.Max(maxYPlus, ms.YPlus[iVertex])
			}
		}
		fmt.Fprintf(out, "wall [%s]: max %s %8.5g, max y+ %8.5g\n",
			tag, NavierStokes.WallShearStress, maxTau, maxYPlus)
	}
}
