package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/wienerlinien/pkg/sensor"
)

type SensorSource interface {
	List() []*sensor.Sensor
	Get(id string) (*sensor.Sensor, bool)
}

func SensorsRouter(router fiber.Router, source SensorSource) {
	router.Get("/", listSensors(source))
	router.Get("/:identifier", getSensor(source))
}

func listSensors(source SensorSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groups := []string{"basic"}
		if c.QueryBool("detailed") {
			groups = append(groups, "detailed")
		}

		sensorsReduced, err := sheriff.Marshal(&sheriff.Options{
			Groups: groups,
		}, source.List())

		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Sherrif could not reduce Sensors",
			})
		}

		return c.JSON(sensorsReduced)
	}
}

func getSensor(source SensorSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.Params("identifier")

		sensor, ok := source.Get(identifier)
		if !ok {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "Could not find Sensor matching Identifier",
			})
		}

		sensorReduced, err := sheriff.Marshal(&sheriff.Options{
			Groups: []string{"basic", "detailed"},
		}, sensor)

		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Sherrif could not reduce Sensor",
			})
		}

		return c.JSON(sensorReduced)
	}
}
