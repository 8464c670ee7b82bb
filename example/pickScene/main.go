package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"fmt"

	"github.com/akmonengine/raycast"
	"github.com/akmonengine/raycast/actor"
	"github.com/akmonengine/raycast/world"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// sceneConfig holds the layers SetupScene relies on
//
//go:embed world.yaml
var sceneConfig []byte

// LoadConfig reads the config at path, or the bundled world.yaml when path is empty
func LoadConfig(path string) (world.Config, error) {
	if path == "" {
		return world.LoadConfig(bytes.NewReader(sceneConfig))
	}
	return world.LoadConfigFile(path)
}

// Scene keeps the bodies the demo casts rays against
type Scene struct {
	World  *world.World
	Config world.Config

	Ground *actor.RigidBody
	Wall   *actor.RigidBody
	Enemy  *actor.RigidBody
	Ramp   *actor.RigidBody
	Crates *actor.RigidBody
}

func layered(cfg world.Config, body *actor.RigidBody, membership string, collideWith ...string) (*actor.RigidBody, error) {
	var err error
	if body.Membership, err = cfg.Groups(membership); err != nil {
		return nil, err
	}
	if len(collideWith) > 0 {
		if body.CollideWith, err = cfg.Groups(collideWith...); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// SetupScene creates a ground plane, a wall, an enemy, a mesh ramp and a row of crates
func SetupScene(cfg world.Config, logger *zap.Logger) (*Scene, error) {
	s := &Scene{
		World:  world.NewWorld(cfg, world.WithLogger(logger)),
		Config: cfg,
	}

	ramp, err := actor.NewMesh(
		[]mgl64.Vec3{{0, 0, 0}, {4, 0, 0}, {4, 2, 4}, {0, 2, 4}},
		[]int{0, 1, 2, 0, 2, 3},
	)
	if err != nil {
		return nil, err
	}

	bodies := []struct {
		target      **actor.RigidBody
		body        *actor.RigidBody
		membership  string
		collideWith []string
	}{
		{&s.Ground, actor.NewRigidBody(
			actor.NewTransform(),
			&actor.Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: 0},
			actor.BodyTypeStatic,
		), "ground", nil},
		{&s.Wall, actor.NewRigidBody(
			actor.NewTransformAt(mgl64.Vec3{0, 2, -12}, mgl64.QuatRotate(mgl64.DegToRad(30), mgl64.Vec3{0, 1, 0})),
			&actor.Box{HalfExtents: mgl64.Vec3{6, 2, 0.5}},
			actor.BodyTypeStatic,
		), "props", nil},
		{&s.Enemy, actor.NewRigidBody(
			actor.Transform{Position: mgl64.Vec3{0, 1, -6}},
			&actor.Sphere{Radius: 1},
			actor.BodyTypeDynamic,
		), "enemy", nil},
		{&s.Ramp, actor.NewRigidBody(
			actor.Transform{Position: mgl64.Vec3{8, 0, -2}},
			ramp,
			actor.BodyTypeStatic,
		), "ground", nil},
		// Crates only block rays cast by the player
		{&s.Crates, actor.NewInstancedRigidBody(
			actor.Transform{Position: mgl64.Vec3{-8, 0.5, 0}},
			&actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
			actor.BodyTypeStatic,
			[]actor.Transform{
				{Position: mgl64.Vec3{0, 0, 0}},
				{Position: mgl64.Vec3{0, 0, -2}},
				{Position: mgl64.Vec3{0, 0, -4}},
			},
		), "props", []string{"player"}},
	}

	for _, b := range bodies {
		body, err := layered(cfg, b.body, b.membership, b.collideWith...)
		if err != nil {
			return nil, err
		}
		if err := s.World.AddBody(body); err != nil {
			return nil, err
		}
		*b.target = body
	}

	return s, nil
}

func (s *Scene) name(result *raycast.Result) string {
	handle, ok := result.Body()
	if !ok {
		return "nothing"
	}
	body, ok := s.World.Resolve(handle)
	if !ok {
		return "a removed body"
	}

	switch body {
	case s.Ground:
		return "ground"
	case s.Wall:
		return "wall"
	case s.Enemy:
		return "enemy"
	case s.Ramp:
		return fmt.Sprintf("ramp (triangle %d)", result.TriangleIndex())
	case s.Crates:
		index, _ := result.BodyIndex()
		return fmt.Sprintf("crate #%d", index)
	}
	return handle.String()
}

func (s *Scene) report(label string, result *raycast.Result) {
	if !result.HasHit() {
		fmt.Printf("%-14s miss\n", label)
		return
	}
	fmt.Printf("%-14s %s at %.3f, point %v normal %v\n",
		label, s.name(result), result.HitDistance(), result.HitPointWorld(), result.HitNormalWorld())
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	scene, err := SetupScene(cfg, logger)
	if err != nil {
		return fmt.Errorf("setup scene: %w", err)
	}

	result := raycast.NewResult()
	eye := mgl64.Vec3{0, 1.7, 4}

	// Picking: anything in front of the camera
	scene.World.Raycast(eye, eye.Add(mgl64.Vec3{0, -0.1, -30}), raycast.Query{}, result)
	scene.report("pick", result)

	// Line of sight from the enemy to the player, through props and ground only
	sight, err := cfg.Query([]string{"enemy"}, []string{"props", "ground"})
	if err != nil {
		return err
	}
	scene.World.Raycast(scene.Enemy.Transform.Position, eye, sight, result)
	scene.report("line of sight", result)

	// Ground detection under the player, ramp included
	groundOnly, err := cfg.Query(nil, []string{"ground"})
	if err != nil {
		return err
	}
	for _, feet := range []mgl64.Vec3{{0, 1.7, 0}, {9, 3, 1}} {
		scene.World.Raycast(feet, feet.Sub(mgl64.Vec3{0, 10, 0}), groundOnly, result)
		scene.report("ground", result)
	}

	// The crates block the player but not the enemy
	playerShot, err := cfg.Query([]string{"player"}, nil)
	if err != nil {
		return err
	}
	scene.World.Raycast(mgl64.Vec3{-8, 0.5, 5}, mgl64.Vec3{-8, 0.5, -10}, playerShot, result)
	scene.report("player shot", result)

	enemyShot, err := cfg.Query([]string{"enemy"}, nil)
	if err != nil {
		return err
	}
	scene.World.Raycast(mgl64.Vec3{-8, 0.5, 5}, mgl64.Vec3{-8, 0.5, -10}, enemyShot, result)
	scene.report("enemy shot", result)

	// Move the enemy, then a fan of rays in one batch
	scene.Enemy.SetPosition(mgl64.Vec3{3, 1, -6})
	scene.World.Sync()

	segments := make([]world.Segment, 0, 9)
	for i := -4; i <= 4; i++ {
		dir := mgl64.Vec3{float64(i) * 0.25, -0.05, -1}.Normalize()
		segments = append(segments, world.Segment{From: eye, To: eye.Add(dir.Mul(40))})
	}
	results, err := scene.World.RaycastBatch(context.Background(), segments, raycast.Query{})
	if err != nil {
		return err
	}
	for i, r := range results {
		scene.report(fmt.Sprintf("fan %d", i), r)
	}

	// A removed body no longer resolves
	handle, _ := results[len(results)/2].Body()
	if body, ok := scene.World.Resolve(handle); ok {
		scene.World.RemoveBody(body)
	}
	_, ok := scene.World.Resolve(handle)
	fmt.Printf("resolve after removal: %v\n", ok)

	return nil
}

func main() {
	configPath := flag.String("config", "", "path to a YAML world config, defaults to the bundled world.yaml")
	debug := flag.Bool("debug", false, "log every raycast")
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("pick scene failed", zap.Error(err))
	}
}
