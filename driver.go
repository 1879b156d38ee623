// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FilterIpmDriver runs the primal-dual interior-point method with
// filter-based line-search globalization described in spec.md §4.1. It
// owns the current and trial iterates, the cached NLP function and
// derivative values at each, and the collaborating components (the
// log-barrier objective, residuals, filter, quasi-Newton Hessian, KKT
// solver and duals-update policy).
type FilterIpmDriver struct {
	p    *Problem
	opts *Options

	n, mc, md int

	itCurr, itTrial, dir *Iterate

	logbar            *LogBarrierProblem
	residCurr         *Residual
	residTrial        *Residual
	filter            *Filter
	hess              *QuasiNewtonHessian
	kkt               *KKTSolver
	dualsUpdate       *DualsUpdate
	scaling           errorScaling

	fCurr, fTrial                     float64
	cCurr, dCurr, cTrial, dTrial      *mat.VecDense
	gradFCurr, gradFTrial             *mat.VecDense
	JcCurr, JdCurr, JcTrial, JdTrial  *mat.Dense

	mu       float64
	thetaMax float64
	thetaMin float64
	iter     int

	acceptableCount int
	status          Status
}

// NewDriver allocates a FilterIpmDriver for p under opts, validates opts,
// and runs the starting procedure of spec.md §4.2.
func NewDriver(p *Problem, opts *Options) (*FilterIpmDriver, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	d := &FilterIpmDriver{
		p: p, opts: opts,
		n: p.NVars, mc: p.NEq, md: p.NIneq,
		itCurr:  newIterate(p),
		itTrial: newIterate(p),
		dir:     newIterate(p),

		logbar:      newLogBarrierProblem(p),
		residCurr:   newResidual(p),
		residTrial:  newResidual(p),
		filter:      newFilter(),
		hess:        newQuasiNewtonHessian(p.NVars, opts.SecantMemoryLen),
		kkt:         newKKTSolver(p),
		dualsUpdate: newDualsUpdate(p, opts.DualsUpdateType),
		scaling:     newErrorScaling(opts.FiniteDimScaling),

		cCurr: mat.NewVecDense(p.NEq, nil), dCurr: mat.NewVecDense(p.NIneq, nil),
		cTrial: mat.NewVecDense(p.NEq, nil), dTrial: mat.NewVecDense(p.NIneq, nil),
		gradFCurr: mat.NewVecDense(p.NVars, nil), gradFTrial: mat.NewVecDense(p.NVars, nil),
		JcCurr: mat.NewDense(maxInt(p.NEq, 1), p.NVars, nil), JdCurr: mat.NewDense(maxInt(p.NIneq, 1), p.NVars, nil),
		JcTrial: mat.NewDense(maxInt(p.NEq, 1), p.NVars, nil), JdTrial: mat.NewDense(maxInt(p.NIneq, 1), p.NVars, nil),

		mu:     opts.Mu0,
		status: IncompleteInit,
	}
	if p.NEq == 0 {
		d.JcCurr = mat.NewDense(0, p.NVars, nil)
		d.JcTrial = mat.NewDense(0, p.NVars, nil)
	}
	if p.NIneq == 0 {
		d.JdCurr = mat.NewDense(0, p.NVars, nil)
		d.JdTrial = mat.NewDense(0, p.NVars, nil)
	}

	if err := d.startingProcedure(); err != nil {
		return nil, err
	}
	d.status = SolveNotCalled
	return d, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// startingProcedure implements spec.md §4.2: fetch x0, project it and the
// derived slacks strictly inside their bounds, set bound duals to 1, and
// initialize the equality duals per Options.DualsInitialization.
func (d *FilterIpmDriver) startingProcedure() error {
	buf := make([]float64, d.n)
	if !d.p.StartingPoint(buf) {
		return ErrBadStartingPoint
	}
	d.itCurr.X = mat.NewVecDense(d.n, buf)
	d.itCurr.projectPrimalsXIntoBounds(d.opts.Kappa1, d.opts.Kappa2)

	if d.md > 0 {
		if err := checkBool(d.p.EvalD(d.itCurr.X.RawVector().Data, true, d.dCurr.RawVector().Data)); err != nil {
			return err
		}
		d.itCurr.S.CopyVec(d.dCurr)
		d.itCurr.determineSlacks(d.opts.Kappa1, d.opts.Kappa2)
	}
	d.itCurr.setBoundsDualsToConstant(1.0)

	if err := checkBool(d.p.EvalGradF(d.itCurr.X.RawVector().Data, d.md == 0, d.gradFCurr.RawVector().Data)); err != nil {
		return err
	}

	switch d.opts.DualsInitialization {
	case DualsInitLsq:
		if d.mc > 0 {
			if err := checkBool(d.p.EvalJacC(d.itCurr.X.RawVector().Data, false, d.JcCurr)); err != nil {
				return err
			}
		}
		if d.md > 0 {
			if err := checkBool(d.p.EvalJacD(d.itCurr.X.RawVector().Data, false, d.JdCurr)); err != nil {
				return err
			}
		}
		if err := computeInitialDualsEq(d.itCurr, d.gradFCurr, d.JcCurr, d.JdCurr, d.n, d.mc, d.md); err != nil {
			d.itCurr.setEqualityDualsToConstant(0)
		}
	default:
		d.itCurr.setEqualityDualsToConstant(0)
	}
	return nil
}

const (
	kappa1Default = 1e-2
	kappa2Default = 1e-2
)

// evalNlpAndLogErrors evaluates f, c, d, grad f, Jc, Jd at it, updates the
// log-barrier cache and the residual, and returns the NLP-sense and
// barrier-sense overall scaled errors, per spec.md §4.7. Preserved as its
// own method so the outer loop can call it twice around the barrier
// update, matching the duplicated call in the original driver (spec.md §9
// Open Questions).
func (d *FilterIpmDriver) evalNlpAndLogErrors(it *Iterate, f *float64, c, dd, gradF *mat.VecDense, Jc, Jd *mat.Dense, resid *Residual) (nlpErr, logErr float64, err error) {
	fv, okF := d.p.EvalF(it.X.RawVector().Data, false)
	if !okF {
		return 0, 0, ErrEvalFailed
	}
	*f = fv

	if d.mc > 0 {
		if !d.p.EvalC(it.X.RawVector().Data, false, c.RawVector().Data) {
			return 0, 0, ErrEvalFailed
		}
	}
	if d.md > 0 {
		if !d.p.EvalD(it.X.RawVector().Data, false, dd.RawVector().Data) {
			return 0, 0, ErrEvalFailed
		}
	}
	if !d.p.EvalGradF(it.X.RawVector().Data, false, gradF.RawVector().Data) {
		return 0, 0, ErrEvalFailed
	}
	if d.mc > 0 {
		if !d.p.EvalJacC(it.X.RawVector().Data, false, Jc) {
			return 0, 0, ErrEvalFailed
		}
	}
	if d.md > 0 {
		if !d.p.EvalJacD(it.X.RawVector().Data, false, Jd) {
			return 0, 0, ErrEvalFailed
		}
	}

	d.logbar.updateWithNlpInfo(it, d.mu, fv, gradF)
	resid.update(it, c, dd, gradF, Jc, Jd, d.mu)

	nrmDualEqu, nrmDualBou := it.totalNormOfDuals()
	if d.opts.FiniteDimScaling {
		nrmDualEqu, nrmDualBou = it.normOneOfDuals()
	}
	sd, sc := d.scaling.scale(nrmDualEqu, nrmDualBou, d.n, d.mc+d.md, d.opts.SMax)

	optimNLP, feasNLP, complemNLP := resid.getNlpErrors()
	optimLog, feasLog, complemLog := resid.getBarrierErrors()
	nlpErr = overallError(optimNLP, feasNLP, complemNLP, sd, sc)
	logErr = overallError(optimLog, feasLog, complemLog, sd, sc)
	return nlpErr, logErr, nil
}

// checkTermination maps an NLP-sense overall error to a terminal Status,
// or Pending if iteration should continue, per spec.md §4.1/§4.7. MaxIter is
// checked ahead of the acceptable-tolerance counter so that max_iter=0
// reports MaxIterExceeded even when the starting point already meets the
// acceptable tolerance; a starting point that meets Tolerance still
// reports Success.
func (d *FilterIpmDriver) checkTermination(nlpErr float64) Status {
	if nlpErr <= d.opts.Tolerance {
		return Success
	}
	if d.iter >= d.opts.MaxIter {
		return MaxIterExceeded
	}
	if nlpErr <= d.opts.AcceptableTolerance {
		d.acceptableCount++
		if d.acceptableCount >= d.opts.AcceptableIterations {
			return AcceptableLevel
		}
	} else {
		d.acceptableCount = 0
	}
	return Pending
}

// updateLogBarrierParameters returns the next barrier parameter per
// spec.md §4.3: new_mu = max(tol/10, min(kappaMu*mu, mu^thetaMu)).
func (d *FilterIpmDriver) updateLogBarrierParameters(mu float64) float64 {
	return math.Max(d.opts.Tolerance/10, math.Min(d.opts.KappaMu*mu, math.Pow(mu, d.opts.ThetaMu)))
}

// Run executes the outer loop of spec.md §4.1 until a terminal Status is
// reached or ctx is cancelled.
func (d *FilterIpmDriver) Run(ctx context.Context) (Status, error) {
	theta0, err := d.initialTheta()
	if err != nil {
		d.status = Failure
		return d.status, err
	}
	d.thetaMax = 1e4 * math.Max(1, theta0)
	d.thetaMin = 1e-4 * math.Max(1, theta0)
	d.filter.reinitialize(d.thetaMax)

	for {
		select {
		case <-ctx.Done():
			d.status = UserStopped
			return d.status, ctx.Err()
		default:
		}

		nlpErr, _, err := d.evalNlpAndLogErrors(d.itCurr, &d.fCurr, d.cCurr, d.dCurr, d.gradFCurr, d.JcCurr, d.JdCurr, d.residCurr)
		if err != nil {
			d.status = Failure
			return d.status, err
		}

		d.logIteration(nlpErr)

		if d.p.IterateCallback != nil {
			info := d.iterationInfo(nlpErr)
			if !d.p.IterateCallback(info) {
				d.status = UserStopped
				break
			}
		}

		if st := d.checkTermination(nlpErr); st != Pending {
			d.status = st
			break
		}

		var logErr float64
		for {
			_, logErr, err = d.evalNlpAndLogErrors(d.itCurr, &d.fCurr, d.cCurr, d.dCurr, d.gradFCurr, d.JcCurr, d.JdCurr, d.residCurr)
			if err != nil {
				d.status = Failure
				return d.status, err
			}
			if logErr > d.opts.KappaEps*d.mu {
				break
			}
			d.mu = d.updateLogBarrierParameters(d.mu)
			d.filter.reinitialize(d.thetaMax)
		}

		d.hess.Update(d.itCurr, d.gradFCurr, d.JcCurr, d.JdCurr)
		if err := d.kkt.Update(d.itCurr, d.logbar, d.JcCurr, d.JdCurr, d.hess, d.mu); err != nil {
			d.status = Failure
			return d.status, err
		}
		if err := d.kkt.ComputeDirections(d.residCurr, d.dir); err != nil {
			d.status = Failure
			return d.status, err
		}

		alphaPrimal, alphaDual := d.itCurr.fractionToTheBdry(d.dir, d.opts.TauMin)

		accepted, alphaPrimalUsed, lsTrials, lsType, err := d.lineSearch(alphaPrimal, alphaDual)
		if err != nil {
			d.status = Failure
			return d.status, err
		}
		if !accepted {
			d.status = StepTooSmall
			break
		}

		if !d.p.EvalGradF(d.itTrial.X.RawVector().Data, false, d.gradFTrial.RawVector().Data) {
			d.status = Failure
			return d.status, ErrEvalFailed
		}
		if d.mc > 0 && !d.p.EvalJacC(d.itTrial.X.RawVector().Data, false, d.JcTrial) {
			d.status = Failure
			return d.status, ErrEvalFailed
		}
		if d.md > 0 && !d.p.EvalJacD(d.itTrial.X.RawVector().Data, false, d.JdTrial) {
			d.status = Failure
			return d.status, ErrEvalFailed
		}

		if err := d.dualsUpdate.Apply(d.itCurr, d.itTrial, d.dir, d.gradFTrial, d.JcTrial, d.JdTrial, alphaDual, d.mu, kappaSigma); err != nil {
			d.status = Failure
			return d.status, err
		}

		d.itCurr, d.itTrial = d.itTrial, d.itCurr
		d.cCurr, d.cTrial = d.cTrial, d.cCurr
		d.dCurr, d.dTrial = d.dTrial, d.dCurr
		d.gradFCurr, d.gradFTrial = d.gradFTrial, d.gradFCurr
		d.JcCurr, d.JcTrial = d.JcTrial, d.JcCurr
		d.JdCurr, d.JdTrial = d.JdTrial, d.JdCurr
		d.fCurr, d.fTrial = d.fTrial, d.fCurr
		d.residCurr, d.residTrial = d.residTrial, d.residCurr

		d.iter++
		_ = alphaPrimalUsed
		_ = lsTrials
		_ = lsType
	}

	if d.p.SolutionCallback != nil {
		d.p.SolutionCallback(d.status, d.itCurr.X.RawVector().Data, d.itCurr.Zl.RawVector().Data, d.itCurr.Zu.RawVector().Data,
			d.cCurr.RawVector().Data, d.dCurr.RawVector().Data, d.itCurr.Yc.RawVector().Data, d.itCurr.Yd.RawVector().Data, d.fCurr)
	}
	return d.status, d.status.Err()
}

func (d *FilterIpmDriver) initialTheta() (float64, error) {
	if d.mc > 0 && !d.p.EvalC(d.itCurr.X.RawVector().Data, true, d.cCurr.RawVector().Data) {
		return 0, ErrEvalFailed
	}
	if d.md > 0 && !d.p.EvalD(d.itCurr.X.RawVector().Data, false, d.dCurr.RawVector().Data) {
		return 0, ErrEvalFailed
	}
	return d.residCurr.computeNlpInfeasNorm(d.itCurr, d.cCurr, d.dCurr), nil
}

// lineSearch runs the backtracking filter line search of spec.md §4.5
// starting from alphaPrimalMax, writing the accepted trial point into
// d.itTrial. alphaDual is the dual fraction-to-the-boundary step and is
// held fixed across backtracking: only the primal step length halves, per
// spec.md §4.2's takeStep_primals(it_curr, dir, alpha_primal, alpha_dual)
// and the original's `it_trial->takeStep_primals(*it_curr, *dir,
// _alpha_primal, _alpha_dual)` (hiopAlgFilterIPM.cpp:347).
//
// lsStatus mirrors the original's four-way classification of the accepted
// trial: 1 sufficient decrease far from the solution, 2 sufficient
// decrease close to the solution with the switching condition false, 3
// Armijo acceptance with the switching condition true (never filter-gated
// and never added to the filter), 0 no acceptable step found.
func (d *FilterIpmDriver) lineSearch(alphaPrimalMax, alphaDual float64) (accepted bool, alphaUsed float64, trials int, lsType string, err error) {
	theta := d.residCurr.getInfeasNorm()
	phiCurr := d.logbar.FLogbar

	var dphi float64
	dphiComputed := false
	directionalDerivative := func() float64 {
		if !dphiComputed {
			dphi = d.logbar.directionalDerivative(d.dir)
			dphiComputed = true
		}
		return dphi
	}

	const minAlpha = 1e-16
	alphaPrimal := alphaPrimalMax
	for trials = 0; ; trials++ {
		if alphaPrimal < minAlpha {
			return false, alphaPrimal, trials, "", nil
		}

		d.itTrial.takeStepPrimals(d.itCurr, d.dir, alphaPrimal, alphaDual)

		fTrial, ok := d.p.EvalF(d.itTrial.X.RawVector().Data, true)
		if !ok {
			alphaPrimal *= 0.5
			continue
		}
		if d.mc > 0 && !d.p.EvalC(d.itTrial.X.RawVector().Data, false, d.cTrial.RawVector().Data) {
			alphaPrimal *= 0.5
			continue
		}
		if d.md > 0 && !d.p.EvalD(d.itTrial.X.RawVector().Data, false, d.dTrial.RawVector().Data) {
			alphaPrimal *= 0.5
			continue
		}
		d.logbar.updateWithNlpInfoTrialFuncOnly(d.itTrial, d.mu, fTrial)
		thetaTrial := d.residTrial.computeNlpInfeasNorm(d.itTrial, d.cTrial, d.dTrial)
		phiTrial := d.logbar.FLogbarTrial

		sufficientDecrease := func() bool {
			if d.filter.contains(thetaTrial, phiTrial) {
				return false
			}
			return thetaTrial <= (1-gammaTheta)*theta || phiTrial <= phiCurr-gammaPhi*theta
		}

		var lsStatus int
		switch {
		case theta >= d.thetaMin:
			// Far from the solution: filter + sufficient-decrease test
			// only. The switching condition and Armijo rule do not apply
			// here (spec.md §4.5 step 4; hiopAlgFilterIPM.cpp:360-366).
			if !sufficientDecrease() {
				alphaPrimal *= 0.5
				continue
			}
			lsStatus = 1
		case directionalDerivative() < 0 && alphaPrimal*math.Pow(-dphi, sPhi) > delta*math.Pow(theta, sTheta):
			// Close to the solution and the switching condition holds:
			// accept or reject purely on Armijo, never via the filter
			// (hiopAlgFilterIPM.cpp:388-398).
			if phiTrial > phiCurr+etaPhi*alphaPrimal*dphi {
				alphaPrimal *= 0.5
				continue
			}
			lsStatus = 3
		default:
			// Close to the solution but the switching condition fails:
			// fall back to the filter + sufficient-decrease test.
			if !sufficientDecrease() {
				alphaPrimal *= 0.5
				continue
			}
			lsStatus = 2
		}

		// Filter augmentation after acceptance (spec.md §4.5): lsStatus 1
		// re-checks switching+Armijo and augments only if either fails;
		// lsStatus 2 always augments; lsStatus 3 never augments.
		switch lsStatus {
		case 1:
			if directionalDerivative() < 0 && alphaPrimal*math.Pow(-dphi, sPhi) > delta*math.Pow(theta, sTheta) {
				if phiTrial > phiCurr+etaPhi*alphaPrimal*dphi {
					d.filter.add(phiTrial, thetaTrial)
				}
			} else {
				d.filter.add(phiTrial, thetaTrial)
			}
			lsType = "far"
		case 2:
			d.filter.add(phiTrial, thetaTrial)
			lsType = "switch"
		case 3:
			lsType = "armijo"
		}

		d.fTrial = fTrial
		return true, alphaPrimal, trials + 1, lsType, nil
	}
}

func (d *FilterIpmDriver) iterationInfo(nlpErr float64) IterationInfo {
	optim, feas, _ := d.residCurr.getNlpErrors()
	return IterationInfo{
		Iter: d.iter, F: d.fCurr,
		X: d.itCurr.X.RawVector().Data, Zl: d.itCurr.Zl.RawVector().Data, Zu: d.itCurr.Zu.RawVector().Data,
		C: d.cCurr.RawVector().Data, D: d.dCurr.RawVector().Data,
		Yc: d.itCurr.Yc.RawVector().Data, Yd: d.itCurr.Yd.RawVector().Data,
		ErrFeas: feas, ErrOptim: optim, Mu: d.mu,
	}
}

func (d *FilterIpmDriver) logIteration(nlpErr float64) {
	optim, feas, _ := d.residCurr.getNlpErrors()
	d.opts.Logger.Info().
		Int("iter", d.iter).
		Float64("obj", d.fCurr).
		Float64("inf_pr", feas).
		Float64("inf_du", optim).
		Float64("log10_mu", math.Log10(d.mu)).
		Float64("overall_err", nlpErr).
		Msg("iteration")
}

// GetObjective returns the objective value at the current (or final)
// iterate.
func (d *FilterIpmDriver) GetObjective() float64 { return d.fCurr }

// GetSolution copies the current primal point into dst and returns it,
// per spec.md §9 Open Questions (explicit copy semantics, no aliasing of
// internal state).
func (d *FilterIpmDriver) GetSolution(dst []float64) []float64 {
	if cap(dst) < d.n {
		dst = make([]float64, d.n)
	}
	dst = dst[:d.n]
	copy(dst, d.itCurr.X.RawVector().Data)
	return dst
}

// GetSolveStatus returns the Status of the most recent Run call.
func (d *FilterIpmDriver) GetSolveStatus() Status { return d.status }
