package defaults

// Builtin returns a fresh store holding the builtin profiles.
func Builtin() *Store {
	s := NewStore()

	s.Define(KindJastrow, NewProfile("v1", map[string]any{
		"J1":           true,
		"J2":           true,
		"J3":           false,
		"J1_size":      10,
		"J1_rcut":      nil,
		"J2_size":      10,
		"J2_rcut":      nil,
		"J2_init":      "zero",
		"J3_isize":     3,
		"J3_esize":     3,
		"J3_rcut":      5.0,
		"J1_rcut_open": 5.0,
		"J2_rcut_open": 10.0,
	}))

	s.Define(KindOptSections, NewProfile("v1", map[string]any{
		"method":     "linear",
		"cost":       "variance",
		"cycles":     12,
		"var_cycles": 4,
	}))
	defineOptOverlays(s)

	s.Define(KindVMCSections, NewProfile("v1", vmcSectionsV1()))
	s.Define(KindDMCSections, NewProfile("v1", map[string]any{
		"vmc_walkers":      1,
		"vmc_warmupsteps":  30,
		"vmc_blocks":       20,
		"vmc_steps":        10,
		"vmc_substeps":     3,
		"vmc_timestep":     0.3,
		"vmc_checkpoint":   -1,
		"vmc_samples":      2048,
		"eq_dmc":           false,
		"eq_warmupsteps":   20,
		"eq_blocks":        20,
		"eq_steps":         5,
		"eq_timestep":      0.02,
		"eq_checkpoint":    -1,
		"warmupsteps":      20,
		"blocks":           200,
		"steps":            10,
		"timestep":         0.01,
		"checkpoint":       -1,
		"J0_warmupsteps":   20,
		"J0_blocks":        400,
		"J0_steps":         10,
		"J0_checkpoint":    -1,
		"test_warmupsteps": 2,
		"test_blocks":      20,
		"test_steps":       4,
		"ntimesteps":       1,
		"timestep_factor":  0.5,
	}))

	defineStageProfiles(s)
	defineChainProfiles(s)
	return s
}

func defineOptOverlays(s *Store) {
	s.DefineOverlay(KindOptSections, "linear", NewProfile("mm", map[string]any{
		"samples":           128000,
		"warmupsteps":       25,
		"blocks":            250,
		"steps":             1,
		"substeps":          20,
		"timestep":          0.5,
		"usedrift":          true,
		"nonlocalpp":        true,
		"usebuffer":         true,
		"minmethod":         "quartic",
		"exp0":              -6,
		"bigchange":         10.0,
		"alloweddifference": 1.0e-5,
		"stepsize":          0.15,
		"nstabilizers":      1,
	}))
	s.DefineOverlay(KindOptSections, "linear", NewProfile("yl", map[string]any{
		"walkers":             256,
		"samples":             655360,
		"warmupsteps":         1,
		"blocks":              40,
		"substeps":            5,
		"stepsbetweensamples": 1,
		"timestep":            1.0,
		"usedrift":            false,
		"nonlocalpp":          false,
		"usebuffer":           false,
		"minmethod":           "quartic",
		"gevmethod":           "mixed",
		"minwalkers":          0.3,
		"maxweight":           1e9,
		"stepsize":            0.9,
	}))
	s.DefineOverlay(KindOptSections, "linear", NewProfile("v1", map[string]any{
		"samples":           204800,
		"warmupsteps":       300,
		"blocks":            100,
		"steps":             1,
		"substeps":          10,
		"timestep":          0.3,
		"usedrift":          false,
		"nonlocalpp":        true,
		"usebuffer":         true,
		"minmethod":         "quartic",
		"exp0":              -6,
		"bigchange":         10.0,
		"alloweddifference": 1e-05,
		"stepsize":          0.15,
		"nstabilizers":      1,
	}))
	s.DefineOverlay(KindOptSections, "cslinear", NewProfile("ls", map[string]any{
		"warmupsteps":       20,
		"steps":             5,
		"usedrift":          true,
		"timestep":          0.8,
		"nonlocalpp":        false,
		"minmethod":         "rescale",
		"stepsize":          0.4,
		"beta":              0.05,
		"gevmethod":         "mixed",
		"alloweddifference": 1e-4,
		"bigchange":         9.0,
		"exp0":              -16,
		"max_its":           1,
		"maxweight":         1e9,
		"minwalkers":        0.5,
		"nstabilizers":      3,
		"stabilizerscale":   1,
		"usebuffer":         false,
	}))
	s.DefineOverlay(KindOptSections, "cslinear", NewProfile("jm", map[string]any{
		"warmupsteps":       20,
		"usedrift":          true,
		"timestep":          0.5,
		"nonlocalpp":        true,
		"minmethod":         "quartic",
		"stepsize":          0.4,
		"beta":              0.0,
		"gevmethod":         "mixed",
		"alloweddifference": 1.0e-4,
		"bigchange":         9.0,
		"exp0":              -16,
		"max_its":           1,
		"maxweight":         1e9,
		"minwalkers":        0.5,
		"nstabilizers":      3,
		"stabilizerscale":   1.0,
		"usebuffer":         true,
	}))
}

func vmcSectionsV1() map[string]any {
	return map[string]any{
		"walkers":          1,
		"warmupsteps":      50,
		"blocks":           800,
		"steps":            10,
		"substeps":         3,
		"timestep":         0.3,
		"checkpoint":       -1,
		"test_warmupsteps": 10,
		"test_blocks":      20,
		"test_steps":       4,
		"J0_warmupsteps":   200,
		"J0_blocks":        800,
		"J0_steps":         100,
	}
}

func defineStageProfiles(s *Store) {
	scfMinimal := NewProfile("minimal", map[string]any{
		"identifier": "scf",
		"input_type": "generic",
		"nosym":      true,
		"wf_collect": true,
		"use_folded": true,
		"nogamma":    true,
	})
	s.Define(KindSCF, NewProfile("none", nil))
	s.Define(KindSCF, scfMinimal)
	s.Define(KindSCF, scfMinimal.Extend("v1", map[string]any{
		"diagonalization":  "david",
		"electron_maxstep": 1000,
		"conv_thr":         1e-8,
		"mixing_beta":      0.2,
		"occupations":      "smearing",
		"smearing":         "fermi-dirac",
		"degauss":          0.0001,
	}))

	p2q := map[string]any{"identifier": "p2q", "write_psir": false}
	s.Define(KindP2Q, NewProfile("minimal", p2q))
	s.Define(KindP2Q, NewProfile("v1", p2q))

	opt := map[string]any{
		"identifier":        "opt",
		"input_type":        "basic",
		"J2_prod":           false,
		"J3_prod":           false,
		JastrowDefaultsKey:  Version,
		SectionsDefaultsKey: Version,
	}
	s.Define(KindOpt, NewProfile("minimal", opt))
	s.Define(KindOpt, NewProfile("v1", opt))

	vmcMinimal := NewProfile("minimal", withLevelFlags(map[string]any{
		"identifier":        "vmc",
		"input_type":        "basic",
		SectionsDefaultsKey: Version,
	}))
	s.Define(KindVMC, vmcMinimal)
	s.Define(KindVMC, vmcMinimal.Extend("v1", vmcSectionsV1()))

	dmc := withLevelFlags(map[string]any{
		"identifier":        "qmc",
		"input_type":        "basic",
		"tmoves":            false,
		"locality":          false,
		SectionsDefaultsKey: Version,
	})
	s.Define(KindDMC, NewProfile("minimal", dmc))
	s.Define(KindDMC, NewProfile("v1", dmc))
}

func withLevelFlags(m map[string]any) map[string]any {
	for _, f := range levelFlags {
		m[f] = false
	}
	return m
}

func defineChainProfiles(s *Store) {
	chain := NewProfile("v1", map[string]any{
		"scf":          false,
		"p2q":          false,
		"opt":          false,
		"vmc":          false,
		"dmc":          false,
		"scf_inputs":   nil,
		"p2q_inputs":   nil,
		"opt_inputs":   nil,
		"vmc_inputs":   nil,
		"dmc_inputs":   nil,
		"scf_defaults": Version,
		"p2q_defaults": Version,
		"opt_defaults": Version,
		"vmc_defaults": Version,
		"dmc_defaults": Version,
		"orb_source":   nil,
		"J2_source":    nil,
		"J3_source":    nil,
	})
	s.Define(KindChain, chain)
	s.Define(KindEcutScan, chain.Extend("v1", map[string]any{
		"scf": true,
		"p2q": true,
		"opt": true,
		"vmc": true,
	}))
}
